package controllers

import (
	"context"
	"net/http"

	"github.com/bargen/bargen-backend/api/middleware"
	"github.com/bargen/bargen-backend/api/responses"
	"github.com/bargen/bargen-backend/pkg/auth"
	pkgerrors "github.com/bargen/bargen-backend/pkg/errors"
	"github.com/bargen/bargen-backend/pkg/logger"
)

func callerOf(r *http.Request) auth.Caller {
	return middleware.CallerFromContext(r.Context())
}

func writeUnavailable(ctx context.Context, logg *logger.Logger, w http.ResponseWriter, name string) {
	responses.WriteError(ctx, logg, w, pkgerrors.Newf(pkgerrors.CodeInternal, "%s service unavailable", name))
}
