// Package modkit provides module wiring and core deps
package modkit

import (
	"streamtags/internal/modkit/repokit"
	"streamtags/internal/platform/config"
	"streamtags/internal/platform/logger"
	"streamtags/internal/platform/store"
)

// Deps holds core dependencies passed to modules
// this is wiring only and does not introduce new abstractions
type Deps struct {
	Log logger.Logger
	Cfg config.Conf

	// PG and Lite are alternative streamer stores; at most one is normally set
	PG   repokit.TxRunner
	Lite repokit.TxRunner

	// CH is the optional analytics sink
	CH store.Clickhouse
}

// FromStore copies the opened seams of st into a Deps
func FromStore(st *store.Store, cfg config.Conf) Deps {
	return Deps{Log: st.Log, Cfg: cfg, PG: st.PG, Lite: st.Lite, CH: st.CH}
}
