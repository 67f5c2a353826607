package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/lordfalah/wasshoes-sub000/internal/entity"
)

const testServerKey = "SB-server-key-test"

func notifEnv(t *testing.T) (*Notification, *fakeOrderRepo, *fakeGateway, *fakePublisher, *fakeCache) {
	t.Helper()
	orders := newFakeOrderRepo()
	gw := newFakeGateway()
	pub := &fakePublisher{}
	cache := newFakeCache()
	return NewNotification(orders, gw, pub, cache, testServerKey), orders, gw, pub, cache
}

func signedPayload(orderID, status, gross string) NotifPayload {
	return NotifPayload{
		OrderID:           orderID,
		StatusCode:        "200",
		GrossAmount:       gross,
		TransactionStatus: status,
		SignatureKey:      Signature(orderID, "200", gross, testServerKey),
	}
}

func TestSignatureDeterministic(t *testing.T) {
	a := Signature("order-1", "200", "100000.00", testServerKey)
	b := Signature("order-1", "200", "100000.00", testServerKey)
	assert.Equal(t, a, b)
	assert.Len(t, a, 128) // hex sha512

	assert.NotEqual(t, a, Signature("order-1", "200", "100000.00", "other-key"))
	assert.NotEqual(t, a, Signature("order-1", "201", "100000.00", testServerKey))
}

func TestHandleRejectsBadSignature(t *testing.T) {
	n, orders, gw, pub, _ := notifEnv(t)
	orders.Create(context.Background(), &domain.Order{ID: "o1", Status: domain.StatusPending})

	p := signedPayload("o1", "settlement", "100000.00")
	p.SignatureKey = "deadbeef"

	_, err := n.Handle(context.Background(), p)
	assert.ErrorIs(t, err, ErrInvalidSignature)

	// Nothing was touched.
	o, _ := orders.GetByID(context.Background(), "o1")
	assert.Equal(t, domain.StatusPending, o.Status)
	assert.Zero(t, gw.statusCalls)
	assert.Empty(t, pub.msgs)
}

func TestHandleAppliesGatewayStatus(t *testing.T) {
	n, orders, gw, pub, cache := notifEnv(t)
	orders.Create(context.Background(), &domain.Order{
		ID: "o1", UserID: "u1", StoreID: "store-1", Status: domain.StatusPending,
	})
	gw.status["o1"] = &GatewayStatus{OrderID: "o1", TransactionStatus: "settlement", PaymentType: "qris"}

	gs, err := n.Handle(context.Background(), signedPayload("o1", "settlement", "100000.00"))
	require.NoError(t, err)
	assert.Equal(t, "settlement", gs.TransactionStatus)

	o, _ := orders.GetByID(context.Background(), "o1")
	assert.Equal(t, domain.StatusSettlement, o.Status)

	cached, ok, _ := cache.GetStatus(context.Background(), "o1")
	assert.True(t, ok)
	assert.Equal(t, string(domain.StatusSettlement), cached)

	require.Len(t, pub.msgs, 1)
	assert.Equal(t, "o1", pub.msgs[0].OrderID)
	assert.Equal(t, string(domain.StatusPending), pub.msgs[0].FromStatus)
	assert.Equal(t, string(domain.StatusSettlement), pub.msgs[0].Status)
}

func TestHandleTrustsGatewayOverBody(t *testing.T) {
	n, orders, gw, _, _ := notifEnv(t)
	orders.Create(context.Background(), &domain.Order{ID: "o1", Status: domain.StatusPending})
	// Webhook claims settlement; the gateway says deny.
	gw.status["o1"] = &GatewayStatus{OrderID: "o1", TransactionStatus: "deny"}

	_, err := n.Handle(context.Background(), signedPayload("o1", "settlement", "100000.00"))
	require.NoError(t, err)

	o, _ := orders.GetByID(context.Background(), "o1")
	assert.Equal(t, domain.StatusDeny, o.Status)
}

func TestHandleUnknownStatusMapsToFailure(t *testing.T) {
	n, orders, gw, _, _ := notifEnv(t)
	orders.Create(context.Background(), &domain.Order{ID: "o1", Status: domain.StatusPending})
	gw.status["o1"] = &GatewayStatus{OrderID: "o1", TransactionStatus: "refund"}

	_, err := n.Handle(context.Background(), signedPayload("o1", "refund", "100000.00"))
	require.NoError(t, err)

	o, _ := orders.GetByID(context.Background(), "o1")
	assert.Equal(t, domain.StatusFailure, o.Status)
}

func TestHandleReplayIsIdempotent(t *testing.T) {
	n, orders, gw, pub, _ := notifEnv(t)
	orders.Create(context.Background(), &domain.Order{ID: "o1", Status: domain.StatusPending})
	gw.status["o1"] = &GatewayStatus{OrderID: "o1", TransactionStatus: "settlement"}

	p := signedPayload("o1", "settlement", "100000.00")
	_, err := n.Handle(context.Background(), p)
	require.NoError(t, err)
	_, err = n.Handle(context.Background(), p)
	require.NoError(t, err)

	// Only the first delivery publishes; the replay sees no change.
	assert.Len(t, pub.msgs, 1)
}

func TestHandleUnknownOrder(t *testing.T) {
	n, _, _, _, _ := notifEnv(t)

	_, err := n.Handle(context.Background(), signedPayload("ghost", "settlement", "100000.00"))
	assert.ErrorIs(t, err, domain.ErrOrderNotFound)
}

func TestNotifPayloadAmount(t *testing.T) {
	p := NotifPayload{GrossAmount: "100000.00"}
	assert.Equal(t, "100000", p.Amount().String())

	assert.True(t, NotifPayload{GrossAmount: "not-a-number"}.Amount().IsZero())
}
