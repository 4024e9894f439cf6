package stripewebhooks

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"school-admin-app/internal/domain/billing"
	"school-admin-app/internal/domain/plans"
	"school-admin-app/internal/domain/schools"
)

const testEndpointSecret = "whsec_test"

func newWebhookRouter(t *testing.T) (*gorm.DB, *gin.Engine) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&schools.School{},
		&plans.Plan{},
		&billing.SchoolSubscription{},
		&billing.Payment{},
	))

	processor := billing.NewProcessor(
		billing.NewRepository(db),
		schools.NewStore(db),
		plans.NewStore(db),
		zap.NewNop(),
	)
	h := NewHandler(processor, testEndpointSecret, zap.NewNop())

	r := gin.New()
	r.POST("/webhook", h.HandleWebhook)
	return db, r
}

// signature builds the gateway's v1 signature header:
// t=<ts>,v1=hex(hmac_sha256(secret, "<ts>.<payload>")).
func signature(payload string, ts int64) string {
	mac := hmac.New(sha256.New, []byte(testEndpointSecret))
	fmt.Fprintf(mac, "%d.%s", ts, payload)
	return fmt.Sprintf("t=%d,v1=%s", ts, hex.EncodeToString(mac.Sum(nil)))
}

func deliver(t *testing.T, r *gin.Engine, payload string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(payload))
	req.Header.Set("Stripe-Signature", signature(payload, time.Now().Unix()))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func eventPayload(id, kind, object string) string {
	return fmt.Sprintf(`{"id":%q,"type":%q,"created":%d,"data":{"object":%s}}`,
		id, kind, time.Now().Unix(), object)
}

func TestHandleWebhookRejectsBadSignature(t *testing.T) {
	_, r := newWebhookRouter(t)

	payload := eventPayload("evt_1", "checkout.session.completed", `{}`)
	req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(payload))
	req.Header.Set("Stripe-Signature", "t=1,v1=deadbeef")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleWebhookAcksUnknownEventKind(t *testing.T) {
	_, r := newWebhookRouter(t)

	w := deliver(t, r, eventPayload("evt_1", "charge.refunded", `{}`))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "ignored")
}

func TestHandleWebhookCheckoutCompleted(t *testing.T) {
	db, r := newWebhookRouter(t)

	require.NoError(t, db.Create(&schools.School{Name: "Nordschule", ContactEmail: "office@example.org"}).Error)
	require.NoError(t, db.Create(&plans.Plan{
		Name: "Essential", PriceAmount: 10, Currency: "eur",
		BillingCycle: plans.CycleMonthly, Active: true,
	}).Error)

	w := deliver(t, r, eventPayload("evt_1", "checkout.session.completed", `{
		"id": "cs_1",
		"subscription": {"id": "sub_1"},
		"customer": {"id": "cus_1"},
		"metadata": {"school_id": "1", "plan_id": "1", "requester_id": "9"}
	}`))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var sub billing.SchoolSubscription
	require.NoError(t, db.Where("stripe_subscription_id = ?", "sub_1").First(&sub).Error)
	assert.Equal(t, billing.StatusActive, sub.Status)
}

func TestHandleWebhookRejectsMissingMetadataPermanently(t *testing.T) {
	// Uncorrelatable events must 400 so the gateway stops redelivering.
	_, r := newWebhookRouter(t)

	w := deliver(t, r, eventPayload("evt_1", "checkout.session.completed", `{
		"id": "cs_1",
		"subscription": {"id": "sub_1"}
	}`))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleWebhookRejectsUnknownPlanPermanently(t *testing.T) {
	db, r := newWebhookRouter(t)
	require.NoError(t, db.Create(&schools.School{Name: "Nordschule"}).Error)

	w := deliver(t, r, eventPayload("evt_1", "checkout.session.completed", `{
		"id": "cs_1",
		"subscription": {"id": "sub_1"},
		"metadata": {"school_id": "1", "plan_id": "999"}
	}`))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleWebhookAcksOutOfOrderInvoice(t *testing.T) {
	db, r := newWebhookRouter(t)

	w := deliver(t, r, eventPayload("evt_1", "invoice.paid", `{
		"id": "in_1",
		"subscription": {"id": "sub_unseen"},
		"billing_reason": "subscription_cycle",
		"amount_paid": 1000
	}`))
	assert.Equal(t, http.StatusOK, w.Code)

	var n int64
	require.NoError(t, db.Model(&billing.SchoolSubscription{}).Count(&n).Error)
	assert.Zero(t, n)
}

func TestHandleWebhookSubscriptionDeleted(t *testing.T) {
	db, r := newWebhookRouter(t)

	require.NoError(t, db.Create(&schools.School{Name: "Nordschule"}).Error)
	require.NoError(t, db.Create(&plans.Plan{
		Name: "Essential", PriceAmount: 10, Currency: "eur",
		BillingCycle: plans.CycleMonthly, Active: true,
	}).Error)
	ref := "sub_1"
	require.NoError(t, db.Create(&billing.SchoolSubscription{
		SchoolID: 1, PlanID: 1, Status: billing.StatusActive,
		CurrentPeriodStart:   time.Now().Add(-time.Hour),
		NextBillingDate:      time.Now().AddDate(0, 1, 0),
		StripeSubscriptionID: &ref,
	}).Error)

	w := deliver(t, r, eventPayload("evt_1", "customer.subscription.deleted", `{
		"id": "sub_1",
		"ended_at": 1714521600
	}`))
	require.Equal(t, http.StatusOK, w.Code)

	var sub billing.SchoolSubscription
	require.NoError(t, db.Where("stripe_subscription_id = ?", "sub_1").First(&sub).Error)
	assert.Equal(t, billing.StatusCanceled, sub.Status)
	require.NotNil(t, sub.EndDate)
	assert.Equal(t, int64(1714521600), sub.EndDate.Unix())
}
