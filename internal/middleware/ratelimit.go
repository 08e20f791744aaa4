// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"inkwell/internal/apperr"
)

// clientWindow holds the write timestamps of one client inside the window.
type clientWindow struct {
	mu    sync.Mutex
	stamp []time.Time
}

// WriteLimiter bounds mutating requests per client IP with a sliding
// window. Reads are never limited.
type WriteLimiter struct {
	mu      sync.RWMutex
	clients map[string]*clientWindow
	limit   int
	window  time.Duration
	now     func() time.Time
	stopCh  chan struct{}
	once    sync.Once

	// trustProxy keys clients on forwarding headers instead of RemoteAddr.
	trustProxy bool
}

// NewWriteLimiter allows limit writes per window for each client. A limit
// below 1 disables limiting. The returned limiter sweeps idle clients in
// the background until Stop is called.
func NewWriteLimiter(limit int, window time.Duration) *WriteLimiter {
	wl := &WriteLimiter{
		clients: make(map[string]*clientWindow),
		limit:   limit,
		window:  window,
		now:     time.Now,
		stopCh:  make(chan struct{}),
	}

	sweep := max(window, time.Minute)
	go func() {
		ticker := time.NewTicker(sweep)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				wl.sweep()
			case <-wl.stopCh:
				return
			}
		}
	}()

	return wl
}

// TrustProxyHeaders makes the limiter key clients on X-Forwarded-For and
// X-Real-IP. Enable it only behind a proxy that overwrites those headers;
// otherwise a client can rotate them to dodge the limit. Call it before
// the limiter serves requests.
func (wl *WriteLimiter) TrustProxyHeaders(trust bool) *WriteLimiter {
	wl.trustProxy = trust
	return wl
}

// Stop ends the background sweep. It is safe to call more than once.
func (wl *WriteLimiter) Stop() {
	wl.once.Do(func() { close(wl.stopCh) })
}

// allow records a write for key and reports whether it fits the window.
// When it does not, the returned duration is how long until the oldest
// write in the window expires.
func (wl *WriteLimiter) allow(key string) (bool, time.Duration) {
	wl.mu.RLock()
	cw, ok := wl.clients[key]
	wl.mu.RUnlock()

	if !ok {
		wl.mu.Lock()
		if cw, ok = wl.clients[key]; !ok {
			cw = &clientWindow{}
			wl.clients[key] = cw
		}
		wl.mu.Unlock()
	}

	now := wl.now()
	cutoff := now.Add(-wl.window)

	cw.mu.Lock()
	defer cw.mu.Unlock()

	kept := cw.stamp[:0]
	for _, ts := range cw.stamp {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}
	cw.stamp = kept

	if len(cw.stamp) >= wl.limit {
		return false, cw.stamp[0].Sub(cutoff)
	}
	cw.stamp = append(cw.stamp, now)
	return true, 0
}

// sweep drops clients with no write inside the window.
func (wl *WriteLimiter) sweep() {
	cutoff := wl.now().Add(-wl.window)

	wl.mu.Lock()
	defer wl.mu.Unlock()

	for key, cw := range wl.clients {
		cw.mu.Lock()
		idle := len(cw.stamp) == 0 || !cw.stamp[len(cw.stamp)-1].After(cutoff)
		cw.mu.Unlock()
		if idle {
			delete(wl.clients, key)
		}
	}
}

// Middleware limits POST, PUT, PATCH and DELETE requests and answers
// over-limit clients with 429 and a Retry-After header.
func (wl *WriteLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if wl.limit < 1 || !isWrite(r.Method) {
			next.ServeHTTP(w, r)
			return
		}
		ok, wait := wl.allow(clientIP(r, wl.trustProxy))
		if !ok {
			secs := int(wait.Round(time.Second) / time.Second)
			w.Header().Set("Retry-After", strconv.Itoa(max(secs, 1)))
			apperr.Respond(w, apperr.RateLimited())
			return
		}
		next.ServeHTTP(w, r)
	})
}

func isWrite(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}

// clientIP returns the host part of RemoteAddr. With trustProxy it prefers
// the leftmost X-Forwarded-For address, then X-Real-IP.
func clientIP(r *http.Request, trustProxy bool) string {
	if trustProxy {
		if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
			first, _, _ := strings.Cut(xff, ",")
			if first = strings.TrimSpace(first); first != "" {
				return first
			}
		}
		if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" {
			return xri
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
