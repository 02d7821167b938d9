package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/san-kum/robocore/internal/battery"
	"github.com/san-kum/robocore/internal/bus"
	"github.com/san-kum/robocore/internal/config"
	"github.com/san-kum/robocore/internal/experiment"
)

// exchangeBattery publishes reqs to a freshly loaded robot and returns its
// responses in request order.
func exchangeBattery(ctx context.Context, cfg *config.Config, reqs []battery.Request) (out []battery.Response, err error) {
	requests := bus.NewTopic[battery.Request](battery.RequestTopic)
	responses := bus.NewTopic[battery.Response](battery.ResponseTopic)

	var got []battery.Response
	unsubscribe := responses.Subscribe(func(_ context.Context, r battery.Response) error {
		got = append(got, r)
		return nil
	})
	defer unsubscribe()

	exp, err := experiment.New(ctx, cfg, experiment.Options{
		Logger:    slog.Default(),
		Requests:  requests,
		Responses: responses,
	})
	if err != nil {
		return nil, err
	}
	defer func() {
		err = errors.Join(err, exp.Close(context.WithoutCancel(ctx)))
	}()

	for _, req := range reqs {
		n := len(got)
		if err := requests.Publish(ctx, req); err != nil {
			return nil, err
		}
		if len(got) == n || got[n].ID != req.ID {
			return nil, fmt.Errorf("no response from %s to %s", req.Data, req.Request)
		}
		out = append(out, got[n])
	}
	return out, nil
}
