// Package api exposes the host boundary over HTTP: open the preview browser,
// close it, inspect its state. The lifecycle manager stays callback-based;
// this layer bridges the exactly-once completion callback onto the request.
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/dgnsrekt/preview_agent/internal/devtools"
	"github.com/dgnsrekt/preview_agent/internal/errcode"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Service is the lifecycle manager surface the API needs.
type Service interface {
	Open(url string, remoteDebugging bool, profileRoot string) errcode.Code
	Close(onComplete func(errcode.Code))
	WindowCount() int
	Closing() bool
	Debugging() bool
}

// Inspector reads the remote-debugging endpoint for the status operation.
// May be nil when the daemon runs without devtools access.
type Inspector interface {
	Version(ctx context.Context) (devtools.VersionInfo, error)
	ListPages(ctx context.Context) ([]devtools.PageTarget, error)
}

type codeBody struct {
	Code     int    `json:"code" doc:"Portable result code; 0 is success."`
	CodeName string `json:"code_name"`
}

type codeOutput struct {
	Body codeBody
}

func newCodeOutput(code errcode.Code) *codeOutput {
	out := &codeOutput{}
	out.Body = codeBody{Code: int(code), CodeName: code.String()}
	return out
}

func NewServer(svc Service, insp Inspector) http.Handler {
	router := chi.NewMux()
	router.Use(middleware.RequestID)
	router.Use(requestLogger)
	router.Use(middleware.Recoverer)

	cfg := huma.DefaultConfig("Live Preview Agent API", "1.0.0")
	api := humachi.New(router, cfg)

	registerPreviewHandlers(api, svc, insp)
	registerHealthHandlers(api)

	return router
}

func registerPreviewHandlers(api huma.API, svc Service, insp Inspector) {
	type openInput struct {
		Body struct {
			URL             string `json:"url" doc:"Target URL, always the final launch argument."`
			RemoteDebugging bool   `json:"remote_debugging,omitempty" doc:"Launch with an isolated profile and the remote-debugging port."`
			ProfileRoot     string `json:"profile_root,omitempty" doc:"Profile root; only consulted when remote_debugging is set."`
		}
	}
	huma.Register(api, huma.Operation{OperationID: "open-preview", Method: http.MethodPost, Path: "/api/v1/preview/open", Summary: "Launch the preview browser", Tags: []string{"Preview"}},
		func(ctx context.Context, input *openInput) (*codeOutput, error) {
			code := svc.Open(input.Body.URL, input.Body.RemoteDebugging, input.Body.ProfileRoot)
			if code != errcode.OK {
				return nil, mapCode(code)
			}
			return newCodeOutput(code), nil
		})

	// Close outcomes (OK, TIMEOUT, SUPERSEDED) are protocol results, not
	// transport failures, so they all travel in a 200 body.
	huma.Register(api, huma.Operation{OperationID: "close-preview", Method: http.MethodPost, Path: "/api/v1/preview/close", Summary: "Close the preview browser instance", Tags: []string{"Preview"}},
		func(ctx context.Context, input *struct{}) (*codeOutput, error) {
			done := make(chan errcode.Code, 1)
			svc.Close(func(code errcode.Code) { done <- code })

			select {
			case code := <-done:
				return newCodeOutput(code), nil
			case <-ctx.Done():
				return nil, huma.Error500InternalServerError("close interrupted: " + ctx.Err().Error())
			}
		})

	type statusOutput struct {
		Body struct {
			Windows  int                   `json:"windows"`
			Closing  bool                  `json:"closing"`
			Browser  string                `json:"browser,omitempty"`
			Pages    []devtools.PageTarget `json:"pages,omitempty"`
			Devtools bool                  `json:"devtools"`
		}
	}
	huma.Register(api, huma.Operation{OperationID: "preview-status", Method: http.MethodGet, Path: "/api/v1/preview/status", Summary: "Report preview browser state", Tags: []string{"Preview"}},
		func(ctx context.Context, input *struct{}) (*statusOutput, error) {
			out := &statusOutput{}
			out.Body.Windows = svc.WindowCount()
			out.Body.Closing = svc.Closing()

			if insp != nil && svc.Debugging() {
				probeCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
				defer cancel()
				if info, err := insp.Version(probeCtx); err == nil {
					out.Body.Devtools = true
					out.Body.Browser = info.Browser
					if pages, err := insp.ListPages(probeCtx); err == nil {
						out.Body.Pages = pages
					} else {
						slog.Debug("devtools page listing failed", "error", err)
					}
				} else {
					slog.Debug("devtools version probe failed", "error", err)
				}
			}
			return out, nil
		})
}

func registerHealthHandlers(api huma.API) {
	type healthOutput struct {
		Body struct {
			Status string `json:"status"`
		}
	}
	huma.Register(api, huma.Operation{OperationID: "health", Method: http.MethodGet, Path: "/health", Summary: "Health check", Tags: []string{"Health"}},
		func(ctx context.Context, input *struct{}) (*healthOutput, error) {
			out := &healthOutput{}
			out.Body.Status = "ok"
			return out, nil
		})
}

// mapCode converts a non-zero launch code into a transport error. The code
// name rides in the message so hosts that only see HTTP still get the
// portable taxonomy.
func mapCode(code errcode.Code) error {
	switch code {
	case errcode.InvalidParams:
		return huma.Error400BadRequest(code.String())
	case errcode.NotFound, errcode.BrowserNotInstalled:
		return huma.Error404NotFound(code.String())
	case errcode.CantRead, errcode.CantWrite:
		return huma.Error403Forbidden(code.String())
	case errcode.Timeout:
		return huma.Error504GatewayTimeout(code.String())
	default:
		return huma.Error500InternalServerError(code.String())
	}
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		slog.Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}
