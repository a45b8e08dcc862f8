package order_test

import (
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"ms-linkmarket/internal/apperrors"
	"ms-linkmarket/internal/logger"
	"ms-linkmarket/internal/models"
	"ms-linkmarket/internal/order"
)

// Mock implementations
type MockDBLayer struct {
	mock.Mock
}

func (m *MockDBLayer) CreateOrder(o models.Order) error {
	args := m.Called(o)
	return args.Error(0)
}

func (m *MockDBLayer) GetOrderByID(id string) (*models.Order, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

func (m *MockDBLayer) UpdateOrderStatus(o models.Order) error {
	args := m.Called(o)
	return args.Error(0)
}

func (m *MockDBLayer) UpdateOrderContent(o models.Order) error {
	args := m.Called(o)
	return args.Error(0)
}

func (m *MockDBLayer) GetOrdersByBuyer(buyerID string) ([]models.Order, error) {
	args := m.Called(buyerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Order), args.Error(1)
}

func (m *MockDBLayer) GetOrdersByPublisher(publisherID string) ([]models.Order, error) {
	args := m.Called(publisherID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Order), args.Error(1)
}

type MockOutletReader struct {
	mock.Mock
}

func (m *MockOutletReader) GetOutletByID(id string) (*models.MediaOutlet, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.MediaOutlet), args.Error(1)
}

func (m *MockOutletReader) GetNicheByID(id string) (*models.Niche, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Niche), args.Error(1)
}

type MockKafkaProducer struct {
	mock.Mock
}

func (m *MockKafkaProducer) PublishOrderCreated(o models.Order) error {
	args := m.Called(o)
	return args.Error(0)
}

func (m *MockKafkaProducer) PublishOrderStatusChanged(o models.Order) error {
	args := m.Called(o)
	return args.Error(0)
}

func (m *MockKafkaProducer) PublishOrderContentUpdated(o models.Order) error {
	args := m.Called(o)
	return args.Error(0)
}

type MockPayments struct {
	mock.Mock
}

func (m *MockPayments) CreateCheckoutSession(o models.Order) (string, error) {
	args := m.Called(o)
	return args.String(0), args.Error(1)
}

func newTestService(db *MockDBLayer, outlets *MockOutletReader, kafka *MockKafkaProducer, payments *MockPayments) *order.OrderService {
	return order.NewOrderService(db, outlets, kafka, payments, logger.NewLogger())
}

func approvedOutlet(publisherID string) *models.MediaOutlet {
	price := 450.0
	return &models.MediaOutlet{
		OutletID:      uuid.NewString(),
		Domain:        "techdaily.example.com",
		Price:         &price,
		PurchasePrice: 250,
		Currency:      "EUR",
		PublisherID:   publisherID,
		Status:        models.OutletStatusApproved,
		IsActive:      true,
	}
}

var (
	buyer     = models.Actor{ID: "buyer123", Roles: []string{models.RoleBuyer}}
	publisher = models.Actor{ID: "pub123", Roles: []string{models.RolePublisher}}
	admin     = models.Actor{ID: "admin1", Roles: []string{models.RoleAdmin}}
)

// Tests start here
func TestPlaceOrderFreezesFinalPrice(t *testing.T) {
	mockDB := new(MockDBLayer)
	mockOutlets := new(MockOutletReader)
	mockKafka := new(MockKafkaProducer)
	mockPayments := new(MockPayments)

	svc := newTestService(mockDB, mockOutlets, mockKafka, mockPayments)

	outlet := approvedOutlet("pub123")
	mockOutlets.On("GetOutletByID", outlet.OutletID).Return(outlet, nil)
	mockOutlets.On("GetNicheByID", "niche-finance").Return(&models.Niche{
		NicheID: "niche-finance", Name: "Finance", Multiplier: 1.5,
	}, nil)
	mockDB.On("CreateOrder", mock.MatchedBy(func(o models.Order) bool {
		return o.BasePrice == 450 && o.PriceMultiplier == 1.5 && o.FinalPrice == 675
	})).Return(nil)
	mockKafka.On("PublishOrderCreated", mock.Anything).Return(nil)
	mockPayments.On("CreateCheckoutSession", mock.Anything).Return("https://checkout.stripe.com/c/pay/cs_test", nil)

	resp, err := svc.PlaceOrder(buyer, models.PlaceOrderRequest{
		OutletID: outlet.OutletID,
		NicheID:  "niche-finance",
	})

	assert.NoError(t, err)
	assert.Equal(t, models.StatusRequested, resp.Order.Status)
	assert.Equal(t, 675.0, resp.Order.FinalPrice)
	assert.Equal(t, "pub123", resp.Order.PublisherID)
	assert.Equal(t, "https://checkout.stripe.com/c/pay/cs_test", resp.CheckoutURL)
	mockDB.AssertExpectations(t)
}

func TestPlaceOrderDefaultsMultiplier(t *testing.T) {
	mockDB := new(MockDBLayer)
	mockOutlets := new(MockOutletReader)
	mockKafka := new(MockKafkaProducer)
	mockPayments := new(MockPayments)

	svc := newTestService(mockDB, mockOutlets, mockKafka, mockPayments)

	outlet := approvedOutlet("pub123")
	mockOutlets.On("GetOutletByID", outlet.OutletID).Return(outlet, nil)
	mockDB.On("CreateOrder", mock.MatchedBy(func(o models.Order) bool {
		return o.PriceMultiplier == 1.0 && o.FinalPrice == 450
	})).Return(nil)
	mockKafka.On("PublishOrderCreated", mock.Anything).Return(nil)
	mockPayments.On("CreateCheckoutSession", mock.Anything).Return("https://checkout.example", nil)

	resp, err := svc.PlaceOrder(buyer, models.PlaceOrderRequest{OutletID: outlet.OutletID})

	assert.NoError(t, err)
	assert.Equal(t, 450.0, resp.Order.FinalPrice)
	mockDB.AssertExpectations(t)
}

func TestPlaceOrderDeniedForPublisher(t *testing.T) {
	svc := newTestService(new(MockDBLayer), new(MockOutletReader), nil, nil)

	_, err := svc.PlaceOrder(publisher, models.PlaceOrderRequest{OutletID: "outlet1"})

	assert.True(t, apperrors.IsPermissionDenied(err))
}

func TestPlaceOrderRejectsUnorderableOutlet(t *testing.T) {
	mockDB := new(MockDBLayer)
	mockOutlets := new(MockOutletReader)
	svc := newTestService(mockDB, mockOutlets, nil, nil)

	outlet := approvedOutlet("pub123")
	outlet.Status = models.OutletStatusPending
	mockOutlets.On("GetOutletByID", outlet.OutletID).Return(outlet, nil)

	_, err := svc.PlaceOrder(buyer, models.PlaceOrderRequest{OutletID: outlet.OutletID})

	assert.Error(t, err)
	mockDB.AssertNotCalled(t, "CreateOrder", mock.Anything)
}

func TestPlaceOrderCheckoutFailureStillReturnsOrder(t *testing.T) {
	mockDB := new(MockDBLayer)
	mockOutlets := new(MockOutletReader)
	mockKafka := new(MockKafkaProducer)
	mockPayments := new(MockPayments)

	svc := newTestService(mockDB, mockOutlets, mockKafka, mockPayments)

	outlet := approvedOutlet("pub123")
	mockOutlets.On("GetOutletByID", outlet.OutletID).Return(outlet, nil)
	mockDB.On("CreateOrder", mock.Anything).Return(nil)
	mockKafka.On("PublishOrderCreated", mock.Anything).Return(nil)
	mockPayments.On("CreateCheckoutSession", mock.Anything).Return("", errors.New("stripe unavailable"))

	resp, err := svc.PlaceOrder(buyer, models.PlaceOrderRequest{OutletID: outlet.OutletID})

	assert.Error(t, err)
	assert.NotNil(t, resp)
	assert.NotEmpty(t, resp.Order.OrderID)
	assert.Empty(t, resp.CheckoutURL)
}

func TestUpdateOrderStatusTransitions(t *testing.T) {
	cases := []struct {
		name    string
		from    string
		to      string
		allowed bool
	}{
		{"requested to accepted", models.StatusRequested, models.StatusAccepted, true},
		{"requested to rejected", models.StatusRequested, models.StatusRejected, true},
		{"accepted to content_received", models.StatusAccepted, models.StatusContentReceived, true},
		{"accepted to rejected", models.StatusAccepted, models.StatusRejected, true},
		{"content_received to published", models.StatusContentReceived, models.StatusPublished, true},
		{"published to verified", models.StatusPublished, models.StatusVerified, true},
		{"requested to published skips steps", models.StatusRequested, models.StatusPublished, false},
		{"published back to accepted", models.StatusPublished, models.StatusAccepted, false},
		{"content_received to rejected too late", models.StatusContentReceived, models.StatusRejected, false},
		{"verified is terminal", models.StatusVerified, models.StatusPublished, false},
		{"rejected is terminal", models.StatusRejected, models.StatusAccepted, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			mockDB := new(MockDBLayer)
			mockKafka := new(MockKafkaProducer)
			svc := newTestService(mockDB, new(MockOutletReader), mockKafka, nil)

			existing := &models.Order{
				OrderID:     "order1",
				BuyerID:     "buyer123",
				PublisherID: "pub123",
				Status:      tc.from,
				CreatedAt:   time.Now(),
			}
			mockDB.On("GetOrderByID", "order1").Return(existing, nil)
			if tc.allowed {
				mockDB.On("UpdateOrderStatus", mock.Anything).Return(nil)
				mockKafka.On("PublishOrderStatusChanged", mock.Anything).Return(nil)
			}

			url := ""
			if tc.to == models.StatusPublished {
				url = "https://techdaily.example.com/article"
			}
			updated, err := svc.UpdateOrderStatus(publisher, "order1", tc.to, url)

			if tc.allowed {
				assert.NoError(t, err)
				assert.Equal(t, tc.to, updated.Status)
			} else {
				assert.True(t, apperrors.IsInvalidTransition(err))
			}
		})
	}
}

func TestUpdateOrderStatusUnknownStatus(t *testing.T) {
	mockDB := new(MockDBLayer)
	svc := newTestService(mockDB, new(MockOutletReader), nil, nil)

	mockDB.On("GetOrderByID", "order1").Return(&models.Order{
		OrderID: "order1", PublisherID: "pub123", Status: models.StatusRequested,
	}, nil)

	_, err := svc.UpdateOrderStatus(publisher, "order1", "shipped", "")

	assert.True(t, apperrors.IsInvalidTransition(err))
}

func TestUpdateOrderStatusDeniedForBuyer(t *testing.T) {
	mockDB := new(MockDBLayer)
	svc := newTestService(mockDB, new(MockOutletReader), nil, nil)

	mockDB.On("GetOrderByID", "order1").Return(&models.Order{
		OrderID: "order1", BuyerID: "buyer123", PublisherID: "pub123", Status: models.StatusRequested,
	}, nil)

	_, err := svc.UpdateOrderStatus(buyer, "order1", models.StatusAccepted, "")

	assert.True(t, apperrors.IsPermissionDenied(err))
	mockDB.AssertNotCalled(t, "UpdateOrderStatus", mock.Anything)
}

func TestUpdateOrderStatusDeniedForOtherPublisher(t *testing.T) {
	mockDB := new(MockDBLayer)
	svc := newTestService(mockDB, new(MockOutletReader), nil, nil)

	mockDB.On("GetOrderByID", "order1").Return(&models.Order{
		OrderID: "order1", PublisherID: "someone-else", Status: models.StatusRequested,
	}, nil)

	_, err := svc.UpdateOrderStatus(publisher, "order1", models.StatusAccepted, "")

	assert.True(t, apperrors.IsPermissionDenied(err))
}

func TestUpdateOrderStatusAdminMayTransitionAnyOrder(t *testing.T) {
	mockDB := new(MockDBLayer)
	mockKafka := new(MockKafkaProducer)
	svc := newTestService(mockDB, new(MockOutletReader), mockKafka, nil)

	mockDB.On("GetOrderByID", "order1").Return(&models.Order{
		OrderID: "order1", PublisherID: "someone-else", Status: models.StatusRequested,
	}, nil)
	mockDB.On("UpdateOrderStatus", mock.Anything).Return(nil)
	mockKafka.On("PublishOrderStatusChanged", mock.Anything).Return(nil)

	updated, err := svc.UpdateOrderStatus(admin, "order1", models.StatusAccepted, "")

	assert.NoError(t, err)
	assert.Equal(t, models.StatusAccepted, updated.Status)
}

func TestPublishedRequiresPublicationURL(t *testing.T) {
	mockDB := new(MockDBLayer)
	svc := newTestService(mockDB, new(MockOutletReader), nil, nil)

	mockDB.On("GetOrderByID", "order1").Return(&models.Order{
		OrderID: "order1", PublisherID: "pub123", Status: models.StatusContentReceived,
	}, nil)

	_, err := svc.UpdateOrderStatus(publisher, "order1", models.StatusPublished, "")

	assert.True(t, apperrors.IsInvalidTransition(err))
	mockDB.AssertNotCalled(t, "UpdateOrderStatus", mock.Anything)
}

func TestPublishedStampsPublicationDate(t *testing.T) {
	mockDB := new(MockDBLayer)
	mockKafka := new(MockKafkaProducer)
	svc := newTestService(mockDB, new(MockOutletReader), mockKafka, nil)

	mockDB.On("GetOrderByID", "order1").Return(&models.Order{
		OrderID: "order1", PublisherID: "pub123", Status: models.StatusContentReceived,
	}, nil)
	mockDB.On("UpdateOrderStatus", mock.MatchedBy(func(o models.Order) bool {
		return o.PublicationURL == "https://techdaily.example.com/post" && o.PublicationDate != nil
	})).Return(nil)
	mockKafka.On("PublishOrderStatusChanged", mock.Anything).Return(nil)

	updated, err := svc.UpdateOrderStatus(publisher, "order1", models.StatusPublished, "https://techdaily.example.com/post")

	assert.NoError(t, err)
	assert.NotNil(t, updated.PublicationDate)
	mockDB.AssertExpectations(t)
}

func TestUpdateOrderContent(t *testing.T) {
	mockDB := new(MockDBLayer)
	mockKafka := new(MockKafkaProducer)
	svc := newTestService(mockDB, new(MockOutletReader), mockKafka, nil)

	mockDB.On("GetOrderByID", "order1").Return(&models.Order{
		OrderID: "order1", BuyerID: "buyer123", PublisherID: "pub123",
		Status: models.StatusAccepted, Briefing: "old brief",
	}, nil)
	mockDB.On("UpdateOrderContent", mock.MatchedBy(func(o models.Order) bool {
		return o.Briefing == "new brief" && o.AnchorText == "" && o.TargetURL == "https://buyer.example.com"
	})).Return(nil)
	mockKafka.On("PublishOrderContentUpdated", mock.Anything).Return(nil)

	updated, err := svc.UpdateOrderContent(buyer, "order1", models.ContentUpdateRequest{
		Briefing:  "new brief",
		TargetURL: "https://buyer.example.com",
	})

	assert.NoError(t, err)
	assert.Equal(t, "new brief", updated.Briefing)
	assert.Equal(t, "", updated.AnchorText)
	mockDB.AssertExpectations(t)
}

func TestUpdateOrderContentLockedOncePublished(t *testing.T) {
	for _, status := range []string{models.StatusPublished, models.StatusVerified} {
		mockDB := new(MockDBLayer)
		svc := newTestService(mockDB, new(MockOutletReader), nil, nil)

		mockDB.On("GetOrderByID", "order1").Return(&models.Order{
			OrderID: "order1", BuyerID: "buyer123", Status: status,
		}, nil)

		_, err := svc.UpdateOrderContent(buyer, "order1", models.ContentUpdateRequest{Briefing: "late edit"})

		assert.True(t, apperrors.IsInvalidTransition(err), "status %s should lock content", status)
		mockDB.AssertNotCalled(t, "UpdateOrderContent", mock.Anything)
	}
}

func TestUpdateOrderContentDeniedForOtherBuyer(t *testing.T) {
	mockDB := new(MockDBLayer)
	svc := newTestService(mockDB, new(MockOutletReader), nil, nil)

	mockDB.On("GetOrderByID", "order1").Return(&models.Order{
		OrderID: "order1", BuyerID: "someone-else", Status: models.StatusRequested,
	}, nil)

	_, err := svc.UpdateOrderContent(buyer, "order1", models.ContentUpdateRequest{})

	assert.True(t, apperrors.IsPermissionDenied(err))
}

func TestGetOrderNotFound(t *testing.T) {
	mockDB := new(MockDBLayer)
	svc := newTestService(mockDB, new(MockOutletReader), nil, nil)

	mockDB.On("GetOrderByID", "missing").Return(nil, sql.ErrNoRows)

	_, err := svc.GetOrder(admin, "missing")

	assert.True(t, apperrors.IsNotFound(err))
}

func TestGetOrderHiddenFromStrangers(t *testing.T) {
	mockDB := new(MockDBLayer)
	svc := newTestService(mockDB, new(MockOutletReader), nil, nil)

	mockDB.On("GetOrderByID", "order1").Return(&models.Order{
		OrderID: "order1", BuyerID: "other-buyer", PublisherID: "other-pub",
	}, nil)

	_, err := svc.GetOrder(buyer, "order1")

	assert.True(t, apperrors.IsPermissionDenied(err))
}

func TestListOrdersByRole(t *testing.T) {
	mockDB := new(MockDBLayer)
	svc := newTestService(mockDB, new(MockOutletReader), nil, nil)

	mockDB.On("GetOrdersByPublisher", "pub123").Return([]models.Order{{OrderID: "o1"}}, nil)
	mockDB.On("GetOrdersByBuyer", "buyer123").Return([]models.Order{{OrderID: "o2"}, {OrderID: "o3"}}, nil)

	pubOrders, err := svc.ListOrders(publisher)
	assert.NoError(t, err)
	assert.Len(t, pubOrders, 1)

	buyerOrders, err := svc.ListOrders(buyer)
	assert.NoError(t, err)
	assert.Len(t, buyerOrders, 2)
}
