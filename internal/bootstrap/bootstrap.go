package bootstrap

import (
	"context"
	"errors"
	"log/slog"

	"cloud.google.com/go/firestore"

	vertexclient "github.com/GregMSThompson/copilot-dashboard/internal/client/vertex"
	"github.com/GregMSThompson/copilot-dashboard/internal/config"
	"github.com/GregMSThompson/copilot-dashboard/internal/dto"
	"github.com/GregMSThompson/copilot-dashboard/internal/localstore"
	"github.com/GregMSThompson/copilot-dashboard/internal/session"
	"github.com/GregMSThompson/copilot-dashboard/pkg/logger"
)

type vertexGenerator interface {
	GenerateContent(ctx context.Context, req dto.VertexGenerateRequest) (dto.VertexGenerateResponse, error)
}

type Bootstrap struct {
	Log        *slog.Logger
	LocalStore *localstore.Store
	Sessions   *session.Provider
	Firestore  *firestore.Client // nil when no project is configured
	Vertex     vertexGenerator

	closers []func() error
}

func Run(cfg *config.Config) (*Bootstrap, error) {
	var err error
	applicationCtx := context.Background()
	bs := new(Bootstrap)

	bs.Log = logger.New(cfg.LogLevel, logger.NewCloudRunHandler)

	bs.LocalStore, err = localstore.Open(cfg.LocalStorePath)
	if err != nil {
		return bs, err
	}
	bs.closers = append(bs.closers, bs.LocalStore.Close)
	bs.Sessions = session.NewProvider(bs.LocalStore)

	if !cfg.RemoteEnabled() {
		bs.Log.Warn("no project configured; widgets use local storage only and the model is disabled")
		bs.Vertex = vertexclient.Disabled{}
		return bs, nil
	}

	bs.Firestore, err = InitFirestore(applicationCtx, cfg.ProjectID, cfg.FirestoreDatabase)
	if err != nil {
		return bs, err
	}
	bs.closers = append(bs.closers, bs.Firestore.Close)

	adapter, err := vertexclient.NewAdapter(applicationCtx, bs.Log, cfg.ProjectID, cfg.Region, cfg.VertexModel)
	if err != nil {
		return bs, err
	}
	bs.closers = append(bs.closers, adapter.Close)
	bs.Vertex = adapter

	return bs, nil
}

// Close releases everything Run opened, newest first.
func (bs *Bootstrap) Close() error {
	var errList []error
	for i := len(bs.closers) - 1; i >= 0; i-- {
		if err := bs.closers[i](); err != nil {
			errList = append(errList, err)
		}
	}
	bs.closers = nil
	return errors.Join(errList...)
}
