package warns

import (
	"context"
	"fmt"

	apperrors "github.com/PancyStudios/PancyGuardGo/pkg/errors"
	"github.com/PancyStudios/PancyGuardGo/pkg/logger"
	"github.com/PancyStudios/PancyGuardGo/pkg/metrics"
	"golang.org/x/sync/errgroup"
)

// GroupOutcome is the result of one per-group ban or unban request
type GroupOutcome struct {
	GroupID string
	Err     error
}

// OK reports whether the request succeeded
func (o GroupOutcome) OK() bool {
	return o.Err == nil
}

// Broadcaster sends ban and unban requests to every registered group.
// Requests run concurrently and a failing group never affects the others.
type Broadcaster struct {
	Groups   GroupStore
	Unbanner Unbanner
	Banner   Banner
}

// ReverseBan unbans userID in every group and waits for all requests to settle.
// It never fails: listing and per-group errors are logged and reported in the
// outcomes only. There are no retries at this layer.
func (b *Broadcaster) ReverseBan(ctx context.Context, userID string) []GroupOutcome {
	return b.fanOut(ctx, "unban", userID, func(ctx context.Context, groupID string) error {
		return b.Unbanner.UnbanMember(ctx, groupID, userID)
	})
}

// ApplyBan bans userID in every group with the same guarantees as ReverseBan
func (b *Broadcaster) ApplyBan(ctx context.Context, userID, reason string) []GroupOutcome {
	return b.fanOut(ctx, "ban", userID, func(ctx context.Context, groupID string) error {
		return b.Banner.BanMember(ctx, groupID, userID, reason)
	})
}

func (b *Broadcaster) fanOut(ctx context.Context, action, userID string, call func(ctx context.Context, groupID string) error) []GroupOutcome {
	groups, err := b.Groups.ListGroups(ctx)
	if err != nil {
		logger.Warn(fmt.Sprintf("No se pudieron listar los grupos para %s de %s: %v", action, userID, err), "Broadcaster")
		return nil
	}

	outcomes := make([]GroupOutcome, len(groups))

	var eg errgroup.Group
	for i, group := range groups {
		outcomes[i] = GroupOutcome{GroupID: group.ID, Err: fmt.Errorf("%s request did not complete", action)}

		eg.Go(func() error {
			defer apperrors.RecoverMiddleware()()

			err := call(ctx, group.ID)
			outcomes[i].Err = err
			metrics.GroupRequests.WithLabelValues(action, metrics.Result(err)).Inc()
			if err != nil {
				logger.Debug(fmt.Sprintf("%s de %s en %s falló: %v", action, userID, group.ID, err), "Broadcaster")
			}
			return nil
		})
	}
	_ = eg.Wait()

	return outcomes
}

// Failed counts the unsuccessful outcomes
func Failed(outcomes []GroupOutcome) int {
	n := 0
	for _, o := range outcomes {
		if !o.OK() {
			n++
		}
	}
	return n
}
