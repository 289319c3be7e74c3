package system

import (
	"time"

	"go.uber.org/zap"

	"github.com/scenehook/scenehook/internal/asset"
	"github.com/scenehook/scenehook/internal/core/event"
	coresys "github.com/scenehook/scenehook/internal/core/system"
)

// AssetPollSystem applies finished asset loads and file changes, and emits an
// asset.Event for each. Phase 0 (First), so scenes spawned this tick see the
// newest asset values.
type AssetPollSystem struct {
	assets *asset.Server
	bus    *event.Bus
	log    *zap.Logger
}

func NewAssetPollSystem(assets *asset.Server, bus *event.Bus, log *zap.Logger) *AssetPollSystem {
	if log == nil {
		log = zap.NewNop()
	}
	return &AssetPollSystem{assets: assets, bus: bus, log: log}
}

func (s *AssetPollSystem) Phase() coresys.Phase { return coresys.PhaseFirst }

func (s *AssetPollSystem) Update(_ time.Duration) {
	for _, ev := range s.assets.Poll() {
		if ev.Kind == asset.EventModified {
			s.log.Info("asset modified",
				zap.String("path", ev.Handle.Path()),
				zap.Stringer("version", ev.Version),
			)
		}
		event.Emit(s.bus, ev)
	}
}
