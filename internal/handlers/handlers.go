package handlers

import (
	"time"

	"github.com/fvacek/unplayer/internal/database"
	"github.com/fvacek/unplayer/internal/library"
)

type Handlers struct {
	store     *database.Store
	library   *library.Library
	startTime time.Time
}

func New(store *database.Store, lib *library.Library) *Handlers {
	return &Handlers{
		store:     store,
		library:   lib,
		startTime: time.Now(),
	}
}
