package main

import (
	"github.com/hibiken/asynq"

	authorJob "bookshelf-backend/internal/domains/author/job"
	bookJob "bookshelf-backend/internal/domains/book/job"
	"bookshelf-backend/internal/shared"
	"bookshelf-backend/pkg/container"
)

// HandlerRegistry holds all job handlers
type HandlerRegistry struct {
	mirrorCover     *bookJob.MirrorCoverHandler
	auditDuplicates *authorJob.AuditDuplicatesHandler
}

func initializeHandlers(c *container.Container) *HandlerRegistry {
	return &HandlerRegistry{
		mirrorCover:     bookJob.NewMirrorCoverHandler(c.CoverService),
		auditDuplicates: authorJob.NewAuditDuplicatesHandler(c.AuthorService),
	}
}

// RegisterHandlers registers all handlers with the mux
func (h *HandlerRegistry) RegisterHandlers(mux *asynq.ServeMux) {
	mux.HandleFunc(shared.TypeMirrorBookCover, h.mirrorCover.ProcessTask)
	mux.HandleFunc(shared.TypeAuditDuplicateAuthors, h.auditDuplicates.ProcessTask)
}
