package battery

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/rs/xid"

	"github.com/san-kum/robocore/internal/bus"
	"github.com/san-kum/robocore/internal/config"
)

const (
	RequestTopic  = "~/battery_level/request"
	ResponseTopic = "~/battery_level/response"

	// SetLevel is the request kind that writes the level. Every other kind
	// reads it.
	SetLevel = "set_battery_level"
	GetLevel = "get_battery_level"

	success = "success"
)

// Request addresses a robot by name in Data.
type Request struct {
	ID      string
	Data    string
	Request string
	DblData float64
}

type Response struct {
	ID       string
	Request  string
	Response string
}

// NewRequest builds a request with a fresh correlation id.
func NewRequest(robot, kind string, value float64) Request {
	return Request{ID: xid.New().String(), Data: robot, Request: kind, DblData: value}
}

type Publisher interface {
	Publish(ctx context.Context, msg Response) error
}

type Responder struct {
	identity config.Identity
	store    *Store
	out      Publisher
	log      *slog.Logger
}

func NewResponder(identity config.Identity, store *Store, out Publisher, logger *slog.Logger) *Responder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Responder{
		identity: identity,
		store:    store,
		out:      out,
		log:      logger.With("robot", identity.ScopedName()),
	}
}

// Attach subscribes the responder to requests and returns the unsubscribe
// function.
func (r *Responder) Attach(requests *bus.Topic[Request]) func() {
	return requests.Subscribe(r.Handle)
}

// Handle answers req unless it is addressed to another robot.
func (r *Responder) Handle(ctx context.Context, req Request) error {
	if !r.identity.Matches(req.Data) {
		return nil
	}

	resp := Response{ID: req.ID, Request: req.Request}
	if req.Request == SetLevel {
		r.store.SetLevel(req.DblData)
		resp.Response = success
		r.log.DebugContext(ctx, "battery level set", "level", req.DblData, "id", req.ID)
	} else {
		resp.Response = FormatLevel(r.store.Level())
	}
	return r.out.Publish(ctx, resp)
}

// FormatLevel renders v with six significant digits and no trailing zeros.
func FormatLevel(v float64) string {
	return strconv.FormatFloat(v, 'g', 6, 64)
}
