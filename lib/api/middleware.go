package api

import (
	"fmt"
	"net/http"
	"runtime/debug"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	logging "github.com/inconshreveable/log15"
	"github.com/ulule/limiter"
	"github.com/ulule/limiter/drivers/store/memory"

	"github.com/curatenet/tcr/lib/common"
	"github.com/curatenet/tcr/lib/errors"
	"github.com/curatenet/tcr/lib/metrics"
	"github.com/curatenet/tcr/lib/network/httputils"
)

func RecoverMiddleware(logger logging.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					err, ok := rec.(error)
					if !ok {
						err = fmt.Errorf("panic: %v", rec)
					}
					httputils.WriteJSONError(w, err)
					logger.Error("recovered from panic", "err", err)
					debug.PrintStack()
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// RateLimitMiddleware throttles by client IP. An override with a zero limit
// exempts that address entirely.
func RateLimitMiddleware(logger logging.Logger, rule common.RateLimitRule) mux.MiddlewareFunc {
	store := memory.NewStore()
	defaultLimiter := limiter.New(store, rule.Default)

	byIPAddress := map[string]*limiter.Limiter{}
	for ip, rate := range rule.ByIPAddress {
		if rate.Limit == 0 {
			byIPAddress[ip] = nil
			continue
		}
		byIPAddress[ip] = limiter.New(memory.NewStore(), rate)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := limiter.GetIPKey(r)

			lim := defaultLimiter
			if l, ok := byIPAddress[ip]; ok {
				if l == nil {
					next.ServeHTTP(w, r)
					return
				}
				lim = l
			}

			context, err := lim.Get(r.Context(), ip)
			if err != nil {
				httputils.WriteJSONError(w, err)
				return
			}

			w.Header().Set("X-RateLimit-Limit", strconv.FormatInt(context.Limit, 10))
			w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(context.Remaining, 10))
			w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(context.Reset, 10))

			if context.Reached {
				logger.Warn("rate limit reached", "ip", ip)
				httputils.WriteJSONError(w, errors.TooManyRequests)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// MetricsMiddleware records per-endpoint request counts and latencies.
func MetricsMiddleware() mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			begin := time.Now()

			next.ServeHTTP(rec, r)

			endpoint := r.URL.Path
			if route := mux.CurrentRoute(r); route != nil {
				if tpl, err := route.GetPathTemplate(); err == nil {
					endpoint = tpl
				}
			}

			labels := []string{
				"endpoint", endpoint,
				"method", r.Method,
				"status", strconv.Itoa(rec.status),
			}
			metrics.API.RequestsTotal.With(labels...).Add(1)
			if rec.status >= 400 {
				metrics.API.RequestErrorsTotal.With(labels...).Add(1)
			}
			metrics.API.RequestDurationSeconds.With(labels...).Observe(time.Since(begin).Seconds())
		})
	}
}
