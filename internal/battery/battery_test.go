package battery

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/robocore/internal/bus"
	"github.com/san-kum/robocore/internal/config"
)

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

var _ = Describe("Store", func() {
	It("should read zero when no level is known", func() {
		s := NewStore(nil)
		Expect(s.Level()).To(BeZero())
		Expect(s.Known()).To(BeFalse())
	})

	It("should copy the initial level", func() {
		v := 0.8
		s := NewStore(&v)
		v = 0.1
		Expect(s.Level()).To(Equal(0.8))
	})

	It("should be safe for concurrent use", func() {
		s := NewStore(nil)
		var wg sync.WaitGroup
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func(v float64) {
				defer wg.Done()
				s.SetLevel(v)
				_ = s.Level()
			}(float64(i))
		}
		wg.Wait()
		Expect(s.Known()).To(BeTrue())
	})
})

var _ = Describe("Responder", func() {
	var (
		ctx       context.Context
		requests  *bus.Topic[Request]
		responses *bus.Topic[Response]
		got       []Response
		store     *Store
	)

	BeforeEach(func() {
		ctx = context.Background()
		requests = bus.NewTopic[Request](RequestTopic)
		responses = bus.NewTopic[Response](ResponseTopic)
		got = nil
		responses.Subscribe(func(_ context.Context, r Response) error {
			got = append(got, r)
			return nil
		})
		store = NewStore(nil)
		NewResponder(config.Identity{Name: "spider", Scope: "default"}, store, responses, quiet).Attach(requests)
	})

	It("should set then read back the level", func() {
		set := NewRequest("spider", SetLevel, 5.5)
		Expect(requests.Publish(ctx, set)).To(Succeed())
		Expect(requests.Publish(ctx, Request{ID: "q", Data: "spider", Request: GetLevel})).To(Succeed())

		Expect(got).To(Equal([]Response{
			{ID: set.ID, Request: SetLevel, Response: "success"},
			{ID: "q", Request: GetLevel, Response: "5.5"},
		}))
	})

	It("should answer 0 for an unset battery", func() {
		Expect(requests.Publish(ctx, Request{ID: "q", Data: "spider", Request: "anything"})).To(Succeed())
		Expect(got).To(ConsistOf(Response{ID: "q", Request: "anything", Response: "0"}))
	})

	It("should answer to the scoped name", func() {
		Expect(requests.Publish(ctx, Request{ID: "q", Data: "default::spider"})).To(Succeed())
		Expect(got).To(HaveLen(1))
	})

	It("should ignore requests for other robots", func() {
		Expect(requests.Publish(ctx, Request{ID: "q", Data: "snake", Request: SetLevel, DblData: 3})).To(Succeed())
		Expect(requests.Publish(ctx, Request{ID: "r", Data: "other::spider"})).To(Succeed())

		Expect(got).To(BeEmpty())
		Expect(store.Known()).To(BeFalse())
	})

	It("should surface publish failures", func() {
		boom := errors.New("boom")
		failing := bus.NewTopic[Response](ResponseTopic)
		failing.Subscribe(func(context.Context, Response) error { return boom })
		r := NewResponder(config.Identity{Name: "spider"}, NewStore(nil), failing, quiet)

		Expect(r.Handle(ctx, Request{Data: "spider"})).To(MatchError(boom))
	})

	It("should give every request its own correlation id", func() {
		a := NewRequest("spider", GetLevel, 0)
		b := NewRequest("spider", GetLevel, 0)
		Expect(a.ID).NotTo(Equal(b.ID))
	})

	DescribeTable("should format levels with six significant digits",
		func(v float64, want string) {
			Expect(FormatLevel(v)).To(Equal(want))
		},
		Entry("zero", 0.0, "0"),
		Entry("fraction", 0.75, "0.75"),
		Entry("integer", 12.0, "12"),
		Entry("rounded", 3.14159265, "3.14159"),
		Entry("large", 1234567.0, "1.23457e+06"),
	)
})
