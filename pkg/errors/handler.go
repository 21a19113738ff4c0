// Package errors provides error handling and recovery mechanisms for the bot.
// It implements an error counter with automatic shutdown on excessive errors.
package errors

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"os"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"github.com/PancyStudios/PancyGuardGo/pkg/logger"
	"github.com/goccy/go-json"
)

// ErrorHandler counts recovered panics and shuts the process down when more
// than maxErrors happen within one resetInterval
type ErrorHandler struct {
	errors atomic.Int32

	webhookURL   string
	shutdownFunc func()
	exitFunc     func(code int)

	maxErrors     int32
	resetInterval time.Duration
	checkInterval time.Duration

	stopChan chan struct{}
	stopOnce sync.Once
}

// ReportErrorOptions contains options for reporting an error
type ReportErrorOptions struct {
	Error   string
	Message string
}

var (
	handler *ErrorHandler
	once    sync.Once

	reportClient = &http.Client{Timeout: 10 * time.Second}
)

// Init initializes the global error handler
func Init(webhookURL string, shutdownFunc func()) *ErrorHandler {
	once.Do(func() {
		handler = NewErrorHandler(webhookURL, shutdownFunc)
	})
	return handler
}

// Get returns the global error handler instance
func Get() *ErrorHandler {
	return handler
}

// NewErrorHandler creates an ErrorHandler and starts its monitor
func NewErrorHandler(webhookURL string, shutdownFunc func()) *ErrorHandler {
	h := &ErrorHandler{
		webhookURL:    webhookURL,
		shutdownFunc:  shutdownFunc,
		exitFunc:      os.Exit,
		maxErrors:     15,
		resetInterval: 5 * time.Second,
		checkInterval: time.Second,
		stopChan:      make(chan struct{}),
	}
	go h.monitor()
	return h
}

// monitor resets the window every resetInterval and checks the burst limit
// every checkInterval
func (h *ErrorHandler) monitor() {
	reset := time.NewTicker(h.resetInterval)
	check := time.NewTicker(h.checkInterval)
	defer reset.Stop()
	defer check.Stop()

	for {
		select {
		case <-h.stopChan:
			return
		case <-reset.C:
			h.errors.Store(0)
		case <-check.C:
			if h.Exceeded() {
				h.shutdown()
				return
			}
		}
	}
}

// Exceeded reports whether the error burst limit has been crossed
func (h *ErrorHandler) Exceeded() bool {
	return h.errors.Load() > h.maxErrors
}

func (h *ErrorHandler) shutdown() {
	start := time.Now()
	logger.Warn(fmt.Sprintf("%d errores en menos de %v. Apagando...", h.errors.Load(), h.resetInterval), "CRITICAL")

	h.Report(ReportErrorOptions{
		Error:   "Critical Error",
		Message: "Número inusual de errores. Apagando...",
	})

	if h.shutdownFunc != nil {
		h.shutdownFunc()
	}

	logger.Warn(fmt.Sprintf("Finalizando proceso... Tiempo total: %v", time.Since(start)), "CRITICAL")
	h.exitFunc(1)
}

// Stop ends the monitor. Safe to call more than once.
func (h *ErrorHandler) Stop() {
	h.stopOnce.Do(func() { close(h.stopChan) })
}

// IncrementError counts one error in the current window
func (h *ErrorHandler) IncrementError() {
	n := h.errors.Add(1)
	logger.Error(fmt.Sprintf("Errores en la ventana actual: %d", n), "AntiCrash")
}

// Count returns the errors seen in the current window
func (h *ErrorHandler) Count() int32 {
	return h.errors.Load()
}

// HandlePanic counts a recovered panic. The stack is only logged at debug
// level.
func (h *ErrorHandler) HandlePanic(recovered interface{}) {
	h.IncrementError()
	logger.Error(fmt.Sprintf("Panic no controlado: %v", recovered), "AntiCrash")
	logger.Debug(string(debug.Stack()), "AntiCrash")
}

type reportEmbed struct {
	Author      reportAuthor `json:"author"`
	Description string       `json:"description"`
	Color       int          `json:"color"`
	Footer      reportFooter `json:"footer"`
	Timestamp   string       `json:"timestamp"`
}

type reportAuthor struct {
	Name string `json:"name"`
}

type reportFooter struct {
	Text string `json:"text"`
}

// Report posts an embed to the error webhook. Failures are only logged.
func (h *ErrorHandler) Report(data ReportErrorOptions) {
	if h.webhookURL == "" {
		return
	}

	body, err := json.Marshal(map[string][]reportEmbed{
		"embeds": {{
			Author:      reportAuthor{Name: "Error " + data.Error},
			Description: data.Message,
			Color:       0xFF0000,
			Footer:      reportFooter{Text: "PancyGuard Go"},
			Timestamp:   time.Now().Format(time.RFC3339),
		}},
	})
	if err != nil {
		logger.Error(fmt.Sprintf("No se pudo serializar el reporte: %v", err), "AntiCrash")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), reportClient.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.webhookURL, bytes.NewReader(body))
	if err != nil {
		logger.Error(fmt.Sprintf("Webhook de errores inválido: %v", err), "AntiCrash")
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := reportClient.Do(req)
	if err != nil {
		logger.Error(fmt.Sprintf("No se pudo enviar el reporte: %v", err), "AntiCrash")
		return
	}
	defer resp.Body.Close()

	logger.Warn(fmt.Sprintf("Reporte de error enviado, estado %d", resp.StatusCode), "AntiCrash")
}

// RecoverMiddleware returns a recovery function for use in deferred calls
func RecoverMiddleware() func() {
	return func() {
		r := recover()
		if r == nil {
			return
		}
		if handler == nil {
			logger.Error(fmt.Sprintf("Panic recuperado sin handler: %v", r), "AntiCrash")
			return
		}
		handler.HandlePanic(r)
	}
}

// Go runs fn in a new goroutine guarded by RecoverMiddleware
func Go(fn func()) {
	go func() {
		defer RecoverMiddleware()()
		fn()
	}()
}
