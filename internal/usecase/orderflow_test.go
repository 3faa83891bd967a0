package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	domainErrors "github.com/polkiloo/tgmarket/internal/domain/errors"
	"github.com/polkiloo/tgmarket/internal/domain/model"
)

func TestOrderFlowConfirmScenario(t *testing.T) {
	f := newFixture(t)
	client := f.user(t, "client")
	provider := f.user(t, "provider")
	f.fund(t, client, 100)
	service := f.service(t, provider, 40, 0)

	order := f.order(t, client, service.ID)
	if order.Status != model.OrderStatusPending || order.Price != 40 || order.ProviderID != provider {
		t.Fatalf("unexpected order %+v", order)
	}
	if b := f.balance(t, client); b.Available() != 60 || b.Held != 40 {
		t.Fatalf("unexpected balance after create %+v", b)
	}

	clientActor := model.Actor{UserID: client}
	providerActor := model.Actor{UserID: provider}
	f.step(t, order.ID, providerActor, model.ActionAccept)
	f.step(t, order.ID, providerActor, model.ActionStartWork)
	f.step(t, order.ID, providerActor, model.ActionProviderComplete)
	done := f.step(t, order.ID, clientActor, model.ActionClientConfirm)
	if done.Status != model.OrderStatusCompleted {
		t.Fatalf("expected completed, got %s", done.Status)
	}

	cb := f.balance(t, client)
	if cb.Total != 60 || cb.Held != 0 || cb.Available() != 60 {
		t.Fatalf("unexpected client balance %+v", cb)
	}
	if pb := f.balance(t, provider); pb.Available() != 40 {
		t.Fatalf("unexpected provider balance %+v", pb)
	}

	kinds := f.entryKinds(t, order.ID)
	want := []model.EntryKind{model.EntryHold, model.EntrySettle, model.EntryPayout}
	if len(kinds) != len(want) {
		t.Fatalf("unexpected entries %v", kinds)
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Fatalf("unexpected entries %v", kinds)
		}
	}

	events := make(map[model.Event]int)
	for _, n := range f.store.Outbox() {
		events[n.Event]++
	}
	for _, e := range []model.Event{model.EventOrderCreated, model.EventOrderAccepted, model.EventWorkStarted, model.EventProviderCompleted, model.EventOrderCompleted} {
		if events[e] != 1 {
			t.Fatalf("expected one %s notification, got %d", e, events[e])
		}
	}
	if f.waker.count() != 5 {
		t.Fatalf("expected dispatcher woken per commit, got %d", f.waker.count())
	}
}

func TestOrderFlowDeclineScenario(t *testing.T) {
	f := newFixture(t)
	client := f.user(t, "client")
	provider := f.user(t, "provider")
	f.fund(t, client, 100)
	service := f.service(t, provider, 40, 0)

	order := f.order(t, client, service.ID)
	declined := f.step(t, order.ID, model.Actor{UserID: provider}, model.ActionDecline)
	if declined.Status != model.OrderStatusCancelled {
		t.Fatalf("expected cancelled, got %s", declined.Status)
	}
	if b := f.balance(t, client); b.Available() != 100 || b.Held != 0 {
		t.Fatalf("unexpected balance %+v", b)
	}
	kinds := f.entryKinds(t, order.ID)
	if len(kinds) != 2 || kinds[0] != model.EntryHold || kinds[1] != model.EntryRelease {
		t.Fatalf("unexpected entries %v", kinds)
	}

	// a cancelled order frees the slot for a new one
	f.order(t, client, service.ID)
}

func TestOrderFlowCreateGuards(t *testing.T) {
	f := newFixture(t)
	client := f.user(t, "client")
	provider := f.user(t, "provider")
	f.fund(t, client, 100)
	service := f.service(t, provider, 40, 0)
	inactive := &model.Service{ProviderID: provider, Title: "retired", Price: 10}
	if err := f.store.Services().Create(context.Background(), inactive); err != nil {
		t.Fatalf("create service: %v", err)
	}

	cases := []struct {
		name string
		in   CreateOrderInput
		want error
	}{
		{"own service", CreateOrderInput{ClientID: provider, ServiceID: service.ID}, domainErrors.ErrInvalidTransition},
		{"unknown service", CreateOrderInput{ClientID: client, ServiceID: "missing"}, domainErrors.ErrNotFound},
		{"inactive service", CreateOrderInput{ClientID: client, ServiceID: inactive.ID}, domainErrors.ErrInvalidTransition},
		{"price mismatch", CreateOrderInput{ClientID: client, ServiceID: service.ID, Price: 35}, domainErrors.ErrPriceMismatch},
		{"unknown proposal", CreateOrderInput{ClientID: client, ServiceID: service.ID, ProposalID: "missing"}, domainErrors.ErrNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := f.flow.Create(context.Background(), tc.in); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}

	if _, err := f.flow.Create(context.Background(), CreateOrderInput{ClientID: client, ServiceID: service.ID, Price: 40}); err != nil {
		t.Fatalf("matching explicit price must be accepted: %v", err)
	}
	if _, err := f.flow.Create(context.Background(), CreateOrderInput{ClientID: client, ServiceID: service.ID}); !errors.Is(err, domainErrors.ErrActiveOrderExists) {
		t.Fatalf("expected ErrActiveOrderExists, got %v", err)
	}
	if b := f.balance(t, client); b.Held != 40 {
		t.Fatalf("rejected create must not hold funds, got %+v", b)
	}
}

func TestOrderFlowInsufficientFundsLeavesNoTrace(t *testing.T) {
	f := newFixture(t)
	client := f.user(t, "client")
	provider := f.user(t, "provider")
	f.fund(t, client, 30)
	service := f.service(t, provider, 40, 0)

	_, err := f.flow.Create(context.Background(), CreateOrderInput{ClientID: client, ServiceID: service.ID})
	if !errors.Is(err, domainErrors.ErrInsufficientFunds) {
		t.Fatalf("expected ErrInsufficientFunds, got %v", err)
	}

	orders, _ := f.flow.ListByUser(context.Background(), client)
	if len(orders) != 0 {
		t.Fatalf("expected no orders, got %+v", orders)
	}
	if len(f.store.Outbox()) != 0 {
		t.Fatalf("expected no notifications")
	}
	if b := f.balance(t, client); b.Total != 30 || b.Held != 0 {
		t.Fatalf("balance changed %+v", b)
	}
	if f.waker.count() != 0 {
		t.Fatalf("dispatcher must not be woken by a rolled back create")
	}
}

func TestOrderFlowTransitionGuards(t *testing.T) {
	f := newFixture(t)
	client := f.user(t, "client")
	provider := f.user(t, "provider")
	stranger := f.user(t, "stranger")
	f.fund(t, client, 100)
	service := f.service(t, provider, 40, 0)
	order := f.order(t, client, service.ID)

	cases := []struct {
		name    string
		actor   model.Actor
		action  model.Action
		payload TransitionPayload
		want    error
	}{
		{"stranger", model.Actor{UserID: stranger}, model.ActionAccept, TransitionPayload{}, domainErrors.ErrNotAuthorized},
		{"client accepts", model.Actor{UserID: client}, model.ActionAccept, TransitionPayload{}, domainErrors.ErrInvalidTransition},
		{"provider cancels", model.Actor{UserID: provider}, model.ActionCancel, TransitionPayload{}, domainErrors.ErrInvalidTransition},
		{"confirm from pending", model.Actor{UserID: client}, model.ActionClientConfirm, TransitionPayload{}, domainErrors.ErrInvalidTransition},
		{"start before accept", model.Actor{UserID: provider}, model.ActionStartWork, TransitionPayload{}, domainErrors.ErrInvalidTransition},
		{"admin accepts", model.Actor{UserID: stranger, Admin: true}, model.ActionAccept, TransitionPayload{}, domainErrors.ErrInvalidTransition},
		{"resolve undisputed", model.Actor{UserID: stranger, Admin: true}, model.ActionResolve, TransitionPayload{Outcome: model.OutcomeRefund}, domainErrors.ErrInvalidTransition},
		{"unknown action", model.Actor{UserID: client}, model.Action("teleport"), TransitionPayload{}, domainErrors.ErrInvalidTransition},
		{"unknown order", model.Actor{UserID: client}, model.ActionCancel, TransitionPayload{}, domainErrors.ErrNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			id := order.ID
			if tc.name == "unknown order" {
				id = "missing"
			}
			if _, err := f.flow.Transition(context.Background(), id, tc.actor, tc.action, tc.payload); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}

	current, err := f.flow.Get(context.Background(), order.ID, model.Actor{UserID: client})
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if current.Status != model.OrderStatusPending {
		t.Fatalf("rejected transitions changed status to %s", current.Status)
	}
	if _, err := f.flow.Get(context.Background(), order.ID, model.Actor{UserID: stranger}); !errors.Is(err, domainErrors.ErrNotAuthorized) {
		t.Fatalf("expected ErrNotAuthorized for stranger, got %v", err)
	}
}

func TestOrderFlowTerminalStatusesAreFinal(t *testing.T) {
	f := newFixture(t)
	client := f.user(t, "client")
	provider := f.user(t, "provider")
	f.fund(t, client, 100)
	service := f.service(t, provider, 40, 0)
	order := f.order(t, client, service.ID)
	f.step(t, order.ID, model.Actor{UserID: client}, model.ActionCancel)

	actors := []model.Actor{{UserID: client}, {UserID: provider}, {UserID: 999, Admin: true}}
	for action := range transitions {
		for _, actor := range actors {
			_, err := f.flow.Transition(context.Background(), order.ID, actor, action, TransitionPayload{Outcome: model.OutcomeComplete})
			if err == nil {
				t.Fatalf("%s by %d left a cancelled order", action, actor.UserID)
			}
		}
	}
	if kinds := f.entryKinds(t, order.ID); len(kinds) != 2 {
		t.Fatalf("expected hold and release only, got %v", kinds)
	}
}

func TestOrderFlowDisputeResolution(t *testing.T) {
	cases := []struct {
		name     string
		outcome  model.Outcome
		status   model.OrderStatus
		client   int64
		provider int64
	}{
		{"refund", model.OutcomeRefund, model.OrderStatusRefunded, 100, 0},
		{"complete", model.OutcomeComplete, model.OrderStatusCompleted, 60, 40},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)
			client := f.user(t, "client")
			provider := f.user(t, "provider")
			admin := model.Actor{UserID: f.user(t, "admin"), Admin: true}
			f.fund(t, client, 100)
			service := f.service(t, provider, 40, 0)
			order := f.order(t, client, service.ID)

			f.step(t, order.ID, model.Actor{UserID: provider}, model.ActionAccept)
			f.step(t, order.ID, model.Actor{UserID: provider}, model.ActionProviderComplete)
			f.step(t, order.ID, model.Actor{UserID: client}, model.ActionDispute)

			if _, err := f.flow.Transition(context.Background(), order.ID, model.Actor{UserID: client}, model.ActionResolve, TransitionPayload{Outcome: tc.outcome}); !errors.Is(err, domainErrors.ErrInvalidTransition) {
				t.Fatalf("client must not resolve, got %v", err)
			}
			if _, err := f.flow.Transition(context.Background(), order.ID, admin, model.ActionResolve, TransitionPayload{Outcome: "split"}); !errors.Is(err, domainErrors.ErrInvalidTransition) {
				t.Fatalf("expected unknown outcome rejected, got %v", err)
			}

			resolved, err := f.flow.Transition(context.Background(), order.ID, admin, model.ActionResolve, TransitionPayload{Outcome: tc.outcome})
			if err != nil {
				t.Fatalf("resolve: %v", err)
			}
			if resolved.Status != tc.status {
				t.Fatalf("expected %s, got %s", tc.status, resolved.Status)
			}
			if b := f.balance(t, client); b.Available() != tc.client || b.Held != 0 {
				t.Fatalf("unexpected client balance %+v", b)
			}
			if b := f.balance(t, provider); b.Available() != tc.provider {
				t.Fatalf("unexpected provider balance %+v", b)
			}
		})
	}
}

func TestOrderFlowConcurrentAcceptAndDecline(t *testing.T) {
	f := newFixture(t)
	client := f.user(t, "client")
	provider := f.user(t, "provider")
	f.fund(t, client, 100)
	service := f.service(t, provider, 40, 0)
	order := f.order(t, client, service.ID)

	var barrier sync.WaitGroup
	barrier.Add(2)
	racing := NewOrderFlow(f.store, barrierFactory{Factory: f.store, barrier: &barrier}, f.waker, discardLogger())

	actions := []model.Action{model.ActionAccept, model.ActionDecline}
	errs := make([]error, len(actions))
	var wg sync.WaitGroup
	for i, action := range actions {
		wg.Add(1)
		go func(i int, action model.Action) {
			defer wg.Done()
			_, errs[i] = racing.Transition(context.Background(), order.ID, model.Actor{UserID: provider}, action, TransitionPayload{})
		}(i, action)
	}
	wg.Wait()

	var winners, conflicts int
	for _, err := range errs {
		switch {
		case err == nil:
			winners++
		case errors.Is(err, domainErrors.ErrConflict):
			conflicts++
		default:
			t.Fatalf("unexpected error %v", err)
		}
	}
	if winners != 1 || conflicts != 1 {
		t.Fatalf("expected one winner and one conflict, got %v", errs)
	}

	final, _ := f.store.Orders().Get(context.Background(), order.ID)
	kinds := f.entryKinds(t, order.ID)
	switch final.Status {
	case model.OrderStatusAccepted:
		if len(kinds) != 1 {
			t.Fatalf("accepted order must keep its hold only, got %v", kinds)
		}
	case model.OrderStatusCancelled:
		if len(kinds) != 2 || kinds[1] != model.EntryRelease {
			t.Fatalf("declined order must be released once, got %v", kinds)
		}
	default:
		t.Fatalf("unexpected final status %s", final.Status)
	}
	if n := len(f.store.Outbox()); n != 2 {
		t.Fatalf("expected create plus one transition notification, got %d", n)
	}
}

func TestOrderFlowConcurrentProviderComplete(t *testing.T) {
	f := newFixture(t)
	client := f.user(t, "client")
	provider := f.user(t, "provider")
	f.fund(t, client, 100)
	service := f.service(t, provider, 40, 0)
	order := f.order(t, client, service.ID)
	f.step(t, order.ID, model.Actor{UserID: provider}, model.ActionAccept)

	var barrier sync.WaitGroup
	barrier.Add(2)
	racing := NewOrderFlow(f.store, barrierFactory{Factory: f.store, barrier: &barrier}, f.waker, discardLogger())

	errs := make(chan error, 2)
	for i := 0; i < 2; i++ {
		go func() {
			_, err := racing.Transition(context.Background(), order.ID, model.Actor{UserID: provider}, model.ActionProviderComplete, TransitionPayload{})
			errs <- err
		}()
	}

	var winners, conflicts int
	for i := 0; i < 2; i++ {
		err := <-errs
		switch {
		case err == nil:
			winners++
		case errors.Is(err, domainErrors.ErrConflict):
			conflicts++
		default:
			t.Fatalf("unexpected error %v", err)
		}
	}
	if winners != 1 || conflicts != 1 {
		t.Fatalf("expected one winner, got %d winners and %d conflicts", winners, conflicts)
	}

	completed := 0
	for _, n := range f.store.Outbox() {
		if n.Event == model.EventProviderCompleted {
			completed++
		}
	}
	if completed != 1 {
		t.Fatalf("expected one provider_completed notification, got %d", completed)
	}
}

func TestOrderFlowConcurrentCreateKeepsOneActiveOrder(t *testing.T) {
	f := newFixture(t)
	client := f.user(t, "client")
	provider := f.user(t, "provider")
	f.fund(t, client, 1000)
	service := f.service(t, provider, 40, 0)

	const attempts = 8
	errs := make(chan error, attempts)
	var start sync.WaitGroup
	start.Add(1)
	for i := 0; i < attempts; i++ {
		go func() {
			start.Wait()
			_, err := f.flow.Create(context.Background(), CreateOrderInput{ClientID: client, ServiceID: service.ID})
			errs <- err
		}()
	}
	start.Done()

	created := 0
	for i := 0; i < attempts; i++ {
		err := <-errs
		switch {
		case err == nil:
			created++
		case errors.Is(err, domainErrors.ErrActiveOrderExists):
		default:
			t.Fatalf("unexpected error %v", err)
		}
	}
	if created != 1 {
		t.Fatalf("expected exactly one active order, got %d", created)
	}
	if b := f.balance(t, client); b.Held != 40 {
		t.Fatalf("expected one hold, got %+v", b)
	}
}

func TestOrderFlowRecordsSpans(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	previous := otel.GetTracerProvider()
	otel.SetTracerProvider(provider)
	t.Cleanup(func() {
		otel.SetTracerProvider(previous)
		_ = provider.Shutdown(context.Background())
	})

	f := newFixture(t)
	client := f.user(t, "client")
	seller := f.user(t, "provider")
	f.fund(t, client, 100)
	service := f.service(t, seller, 40, 0)
	order := f.order(t, client, service.ID)
	_, _ = f.flow.Transition(context.Background(), order.ID, model.Actor{UserID: client}, model.ActionAccept, TransitionPayload{})

	spans := recorder.Ended()
	if len(spans) != 2 {
		t.Fatalf("expected two spans, got %d", len(spans))
	}
	if spans[0].Name() != "OrderFlow.Create" || spans[0].Status().Code == codes.Error {
		t.Fatalf("unexpected create span %s %v", spans[0].Name(), spans[0].Status())
	}
	if spans[1].Name() != "OrderFlow.Transition" || spans[1].Status().Code != codes.Error {
		t.Fatalf("expected failed transition span, got %s %v", spans[1].Name(), spans[1].Status())
	}
}
