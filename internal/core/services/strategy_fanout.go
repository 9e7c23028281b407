package services

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/custodia-labs/xerosync/internal/core/domain"
	"github.com/custodia-labs/xerosync/internal/core/ports/driven"
	"github.com/custodia-labs/xerosync/internal/logger"
)

func (r *Run) fanOut(ctx context.Context, api driven.AccountingAPI, emit func(domain.Entity) bool, fail func(error)) {
	source := api.Source(r.strategy.SourceName())
	for _, id := range r.strategy.IDs {
		entity, err := source.FetchByID(ctx, id)
		if err != nil {
			if !tolerate(ctx, fail) {
				return
			}
			skipFailed(fmt.Sprintf("%s %s", r.strategy.Endpoint, id), err)
			continue
		}
		if !emit(entity) {
			return
		}
	}
}

func (r *Run) attachments(ctx context.Context, api driven.AccountingAPI, emit func(domain.Entity) bool, fail func(error)) {
	for _, parent := range r.strategy.Attachments {
		source := api.Source(parent.Endpoint)
		entities, err := source.FetchAll(ctx)
		if err != nil {
			if !tolerate(ctx, fail) {
				return
			}
			skipFailed(parent.Endpoint+" for attachments", err)
			continue
		}

		for _, entity := range entities {
			if !entity.Bool("HasAttachments") {
				continue
			}
			id := entity.String(parent.IDField)
			display := entity.String(parent.DisplayField)
			if display == "" {
				display = id
			}

			raw, err := source.FetchAttachments(ctx, id)
			if err != nil {
				if !tolerate(ctx, fail) {
					return
				}
				skipFailed(fmt.Sprintf("attachments for %s %s", parent.Endpoint, id), err)
				continue
			}

			for _, item := range attachmentList(raw) {
				record, err := enrichAttachment(item, parent.Endpoint, id, display)
				if err != nil {
					logger.Warn("Skipping attachment of %s %s: %v", parent.Endpoint, id, err)
					continue
				}
				if !emit(record) {
					return
				}
			}
		}
	}
}

// skipFailed logs a fetch that the run steps over. Missing records are
// expected when an entity is deleted mid-run.
func skipFailed(what string, err error) {
	if errors.Is(err, domain.ErrNotFound) {
		logger.Info("Skipping %s: not available", what)
		return
	}
	logger.Warn("Failed to fetch %s: %v", what, err)
}

// attachmentList accepts a bare array or an {"Attachments": [...]} wrapper.
func attachmentList(raw domain.Entity) []gjson.Result {
	result := gjson.ParseBytes(raw)
	if result.IsObject() {
		result = result.Get("Attachments")
	}
	if !result.IsArray() {
		return nil
	}
	return result.Array()
}

func enrichAttachment(item gjson.Result, endpoint, id, display string) (domain.Entity, error) {
	record := []byte(item.Raw)
	var err error
	for _, kv := range [][2]string{
		{"Endpoint", endpoint},
		{"EntityID", id},
		{"EntityDisplay", display},
	} {
		record, err = sjson.SetBytes(record, kv[0], kv[1])
		if err != nil {
			return nil, err
		}
	}
	return domain.Entity(record), nil
}

// SanitiseName makes s safe to use as a single path element.
func SanitiseName(s string) string {
	s = strings.Map(func(r rune) rune {
		if r < 0x20 || strings.ContainsRune(`/\:*?"<>|`, r) {
			return '_'
		}
		return r
	}, s)
	s = strings.TrimSpace(s)
	if s == "" || s == "." || s == ".." {
		return "_"
	}
	return s
}

// attachmentName places attachment metadata under its parent entity.
func attachmentName(entity domain.Entity, _ domain.Split) string {
	return path.Join(
		"attachments",
		lowerName(entity.String("Endpoint")),
		SanitiseName(entity.String("EntityDisplay")),
		SanitiseName(entity.String("FileName"))+".meta.json",
	)
}

// reportName names a report by its ReportID, which is the report type.
func reportName(entity domain.Entity, _ domain.Split) string {
	return path.Join("reports", lowerName(SanitiseName(entity.String("ReportID")))+".json")
}
