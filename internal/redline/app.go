// Package redline wires the review engine to storage, configuration,
// and the event bus. It is the service layer commands consume.
package redline

import (
	"github.com/rs/zerolog"

	"github.com/hay-kot/redline/internal/core/config"
	"github.com/hay-kot/redline/internal/core/document"
	"github.com/hay-kot/redline/internal/core/eventbus"
	"github.com/hay-kot/redline/internal/core/notify"
	"github.com/hay-kot/redline/internal/core/proposal"
	"github.com/hay-kot/redline/internal/core/review"
)

// App is the central entry point for all redline operations.
// Commands consume App instead of cherry-picking raw dependencies.
type App struct {
	Review *ReviewService
	Saver  *Saver

	Config        *config.Config
	Bus           *eventbus.EventBus
	Docs          document.Storage
	Sessions      review.Store
	Proposals     proposal.Store
	Notifications notify.Store
}

// NewApp constructs an App from explicit dependencies.
func NewApp(
	cfg *config.Config,
	bus *eventbus.EventBus,
	docs document.Storage,
	sessions review.Store,
	proposals proposal.Store,
	notifications notify.Store,
	log zerolog.Logger,
) *App {
	saver := NewSaver(sessions, log.With().Str("cmp", "saver").Logger())

	return &App{
		Review:        NewReviewService(docs, sessions, proposals, cfg, bus, saver, log.With().Str("cmp", "review").Logger()),
		Saver:         saver,
		Config:        cfg,
		Bus:           bus,
		Docs:          docs,
		Sessions:      sessions,
		Proposals:     proposals,
		Notifications: notifications,
	}
}
