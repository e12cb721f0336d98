package hydro

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/hydrostack/hydro-go/internal/errors"
	"github.com/hydrostack/hydro-go/pkg/component"
	"github.com/hydrostack/hydro-go/pkg/protocol"
)

// GlobalScope is the scope id of globally broadcast triggers.
const GlobalScope = "global"

// dispatchEffects runs the response effects in order: location,
// redirect, trigger. A malformed header skips only its own effect.
func (c *Client) dispatchEffects(ctx context.Context, logger *slog.Logger, h http.Header, parent component.Component, hasParent bool) {
	if raw := h.Get(protocol.HeaderLocation); raw != "" {
		loc, err := protocol.ParseLocation(raw)
		if err != nil {
			c.effectError(logger, protocol.HeaderLocation, errors.New("H020").Wrap(err))
		} else if err := c.LoadPage(ctx, loc.Path, loc.TargetOrDefault(), true); err != nil {
			logger.Error("location effect failed", "path", loc.Path, "error", err)
		}
	}

	if target := h.Get(protocol.HeaderRedirect); target != "" {
		logger.Info("redirect", "to", target)
		if err := c.Load(ctx, target); err != nil {
			logger.Error("redirect failed", "to", target, "error", err)
		}
	}

	if raw := h.Get(protocol.HeaderTrigger); raw != "" {
		triggers, err := protocol.ParseTriggers(raw)
		if err != nil {
			c.effectError(logger, protocol.HeaderTrigger, errors.New("H021").Wrap(err))
			return
		}
		for _, t := range triggers {
			c.trigger(logger, t, parent, hasParent)
		}
	}
}

func (c *Client) trigger(logger *slog.Logger, t protocol.Trigger, parent component.Component, hasParent bool) {
	scope := string(t.Scope)
	if t.Scope == protocol.ScopeParent && !hasParent {
		c.metrics.triggersTotal.WithLabelValues(scope, "dropped").Inc()
		logger.Debug("parent trigger dropped, no parent component", "trigger", t.Name)
		return
	}

	scopeID := GlobalScope
	if t.Scope == protocol.ScopeParent {
		scopeID = parent.ID
	}
	name := protocol.EventName(scopeID, t.Name)
	n := c.bus.Dispatch(name, t.Data)
	c.metrics.triggersTotal.WithLabelValues(scope, "delivered").Inc()
	logger.Debug("trigger dispatched", "event", name, "listeners", n)
}

func (c *Client) effectError(logger *slog.Logger, header string, err error) {
	c.metrics.effectErrors.WithLabelValues(header).Inc()
	logger.Error("malformed effect header", "header", header, "error", err)
}
