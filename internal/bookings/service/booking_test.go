package service

import (
	"context"
	"testing"
	"time"

	"bedbook/internal/bookings/validator"
	mongotx "bedbook/pkg/db/mongo"
	apperrors "bedbook/pkg/errors"
	"bedbook/pkg/model"

	"github.com/google/go-cmp/cmp"
	"go.mongodb.org/mongo-driver/mongo"
)

func bookingRequest(tokens ...string) *model.BookingRequest {
	return &model.BookingRequest{
		PropertyID:    propertyID,
		RoomType:      "double",
		SelectedRooms: tokens,
		MoveInDate:    "2024-01-10",
		DurationType:  model.DurationMonthly,
		PersonCount:   1,
		Customer: model.CustomerDetails{
			Name:   "  Asha   Rao ",
			Mobile: "98765 43210",
			Email:  "Asha@Example.com",
		},
	}
}

func requireCode(t *testing.T, err error, code string) *apperrors.AppError {
	t.Helper()
	if !apperrors.HasCode(err, code) {
		t.Fatalf("expected %s, got %v", code, err)
	}
	return apperrors.AsAppError(err)
}

// ────────────────────────────────────────────────
// Create
// ────────────────────────────────────────────────

func TestCreate_ResolvesCanonicalIdentifier(t *testing.T) {
	env := newTestEnv()

	got, err := env.service.Create(context.Background(), tenant, bookingRequest("double-101-BedA"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []model.RoomDetail{{
		BedIdentifier: "double-101-Bed A",
		SharingType:   "double",
		Floor:         1,
		RoomNumber:    "101",
		BedLabel:      "Bed A",
	}}
	if diff := cmp.Diff(want, got.RoomDetails); diff != "" {
		t.Errorf("room details mismatch (-want +got):\n%s", diff)
	}
	if got.Status != model.StatusPending {
		t.Errorf("expected pending, got %s", got.Status)
	}
	if !got.MoveOutDate.Equal(date("2024-02-10")) {
		t.Errorf("expected default one-month stay, got %v", got.MoveOutDate)
	}
	if got.Customer.Name != "Asha Rao" || got.Customer.Email != "asha@example.com" {
		t.Errorf("customer not sanitized: %+v", got.Customer)
	}
	if got.ClientID != ownerID || got.RoomType.Name != "Double Sharing" {
		t.Errorf("unexpected snapshot: client=%q roomType=%+v", got.ClientID, got.RoomType)
	}
	if got.OutstandingAmount != 14000 {
		t.Errorf("expected outstanding 14000, got %v", got.OutstandingAmount)
	}
	if diff := cmp.Diff([][]string{{"double-101-Bed A"}}, env.locks.touched); diff != "" {
		t.Errorf("bed locks mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"booking.created"}, env.publisher.events); diff != "" {
		t.Errorf("events mismatch (-want +got):\n%s", diff)
	}
	if env.repo.get(got.ID) == nil {
		t.Error("reservation not persisted")
	}
}

func TestCreate_DailyPricing(t *testing.T) {
	env := newTestEnv()
	req := bookingRequest("double-101-Bed A")
	req.DurationType = model.DurationDaily
	req.DurationDays = 10

	got, err := env.service.Create(context.Background(), tenant, req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Pricing.TotalRent != 3000 {
		t.Errorf("expected totalRent 3000, got %v", got.Pricing.TotalRent)
	}
	if !got.MoveOutDate.Equal(date("2024-01-20")) {
		t.Errorf("expected move-out 2024-01-20, got %v", got.MoveOutDate)
	}
}

func TestCreate_ConflictListsEveryUnavailableToken(t *testing.T) {
	env := newTestEnv(
		reservationOn(model.StatusApproved, "2024-02-10", "2024-03-10", "double-101-Bed B"),
		reservationOn(model.StatusCheckedOut, "2024-01-01", "2024-03-01", "triple-102-A"),
	)

	tokens := []string{
		"double-101-Bed A", // free
		"bad",              // malformed
		"double-101-Bed B", // held; touching boundary on move-out
		"double-999-A",     // unknown room
		"double-102-B",     // wrong sharing type
		"double-101-BedA",  // duplicate of the first
		"triple-102-A",     // only held by a checked-out stay
	}
	_, err := env.service.Create(context.Background(), tenant, bookingRequest(tokens...))

	appErr := requireCode(t, err, apperrors.CodeConflict)
	want := []string{"bad", "double-101-Bed B", "double-999-A", "double-102-B", "double-101-BedA"}
	if diff := cmp.Diff(want, appErr.Details["unavailableRooms"]); diff != "" {
		t.Errorf("unavailable rooms mismatch (-want +got):\n%s", diff)
	}
	if n, _ := env.repo.Count(context.Background()); n != 2 {
		t.Errorf("expected no new reservation, have %d", n)
	}
	if len(env.publisher.events) != 0 {
		t.Errorf("expected no events, got %v", env.publisher.events)
	}
}

func TestCreate_SecondOverlappingBookingConflicts(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	if _, err := env.service.Create(ctx, tenant, bookingRequest("double-101-Bed A")); err != nil {
		t.Fatalf("first booking failed: %v", err)
	}

	req := bookingRequest("double-101-Bed A")
	req.MoveInDate = "2024-02-10"
	_, err := env.service.Create(ctx, tenant, req)
	requireCode(t, err, apperrors.CodeConflict)
}

func TestCreate_CompletedPaymentConfirms(t *testing.T) {
	env := newTestEnv()
	req := bookingRequest("double-101-Bed A", "double-101-Bed B")
	req.PaymentInfo = &model.PaymentInfo{
		AmountPaid:    9000,
		PaymentStatus: model.PaymentCompleted,
		TransactionID: "txn-1",
	}

	got, err := env.service.Create(context.Background(), tenant, req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Status != model.StatusConfirmed {
		t.Errorf("expected confirmed, got %s", got.Status)
	}
	if len(got.Payments) != 1 || got.Payments[0].Amount != 9000 {
		t.Errorf("expected seeded ledger, got %+v", got.Payments)
	}
	// 2 beds: rent 18000 + deposit 10000 - 9000 paid.
	if got.OutstandingAmount != 19000 {
		t.Errorf("expected outstanding 19000, got %v", got.OutstandingAmount)
	}
	if got.PaymentInfo.PaymentMethod != model.DefaultPaymentMethod {
		t.Errorf("expected default payment method, got %q", got.PaymentInfo.PaymentMethod)
	}
	if got.PaymentInfo.PaymentStatus != model.PaymentPartial {
		t.Errorf("expected payment status from the ledger, got %s", got.PaymentInfo.PaymentStatus)
	}
}

func TestCreate_CompletedWithoutAmountStaysPending(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	req := bookingRequest("double-101-Bed A")
	req.PaymentInfo = &model.PaymentInfo{PaymentStatus: model.PaymentCompleted}

	got, err := env.service.Create(ctx, tenant, req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Status != model.StatusPending || got.PaymentInfo.PaymentStatus != model.PaymentPending {
		t.Fatalf("expected pending/pending, got %s/%s", got.Status, got.PaymentInfo.PaymentStatus)
	}
	if got.OutstandingAmount != 14000 {
		t.Errorf("expected outstanding 14000, got %v", got.OutstandingAmount)
	}

	// A later payment keeps the summary consistent with the ledger.
	updated, err := env.service.RecordPayment(ctx, &model.PaymentEvent{
		BookingID: got.ID,
		Amount:    4000,
		Method:    "online",
		Status:    model.PaymentCompleted,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.PaymentInfo.PaymentStatus != model.PaymentPartial || updated.OutstandingAmount != 10000 {
		t.Errorf("expected partial with 10000 outstanding, got %s with %v",
			updated.PaymentInfo.PaymentStatus, updated.OutstandingAmount)
	}
}

func TestCreate_MonthlyStayFromEndDateIsPricedInFull(t *testing.T) {
	env := newTestEnv()
	req := bookingRequest("double-101-Bed A")
	req.DurationType = ""
	req.EndDate = "2024-04-10"

	got, err := env.service.Create(context.Background(), tenant, req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.MoveOutDate.Equal(date("2024-04-10")) {
		t.Errorf("expected move-out 2024-04-10, got %v", got.MoveOutDate)
	}
	if got.Pricing.TotalRent != 27000 {
		t.Errorf("expected three months of rent, got %v", got.Pricing.TotalRent)
	}
}

func TestCreate_RoomTypeIsCaseInsensitive(t *testing.T) {
	env := newTestEnv()
	env.catalog.RoomTypes[0].Type = "Double"
	req := bookingRequest("double-101-Bed A")
	req.RoomType = "Double"

	got, err := env.service.Create(context.Background(), tenant, req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.RoomType.Type != "Double" || got.RoomDetails[0].BedIdentifier != "Double-101-Bed A" {
		t.Errorf("unexpected room type %q / identifier %q", got.RoomType.Type, got.RoomDetails[0].BedIdentifier)
	}
}

func TestCreate_ReadsCatalogInsideTransaction(t *testing.T) {
	env := newTestEnv()
	var inTx []bool
	env.catalogs.findByPropertyFunc = func(ctx context.Context, id string) (*model.RoomCatalog, error) {
		_, ok := ctx.(mongo.SessionContext)
		inTx = append(inTx, ok)
		return env.catalog, nil
	}

	if _, err := env.service.Create(context.Background(), tenant, bookingRequest("double-101-Bed A")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := cmp.Diff([]bool{true}, inTx); diff != "" {
		t.Errorf("catalog reads mismatch (-want +got):\n%s", diff)
	}
}

func TestCreate_Errors(t *testing.T) {
	tests := []struct {
		name      string
		principal model.Principal
		mutate    func(*model.BookingRequest)
		setup     func(*testEnv)
		wantCode  string
	}{
		{
			name:      "unauthenticated",
			principal: model.Principal{},
			wantCode:  apperrors.CodeUnauthorized,
		},
		{
			name:      "missing fields",
			principal: tenant,
			mutate: func(r *model.BookingRequest) {
				r.PropertyID = ""
				r.SelectedRooms = nil
			},
			wantCode: apperrors.CodeValidation,
		},
		{
			name:      "property not approved",
			principal: tenant,
			mutate:    func(r *model.BookingRequest) { r.PropertyID = "prop-draft" },
			wantCode:  apperrors.CodeNotAvailable,
		},
		{
			name:      "property missing",
			principal: tenant,
			mutate:    func(r *model.BookingRequest) { r.PropertyID = "nowhere" },
			wantCode:  apperrors.CodeNotAvailable,
		},
		{
			name:      "user without client",
			principal: model.Principal{UserID: "orphan-1", Role: model.RoleUser},
			wantCode:  apperrors.CodeInvalidUser,
		},
		{
			name:      "unknown user",
			principal: model.Principal{UserID: "ghost", Role: model.RoleUser},
			wantCode:  apperrors.CodeInvalidUser,
		},
		{
			name:      "unknown room type",
			principal: tenant,
			mutate:    func(r *model.BookingRequest) { r.RoomType = "suite" },
			wantCode:  apperrors.CodeRoomTypeNotFound,
		},
		{
			name:      "single malformed token",
			principal: tenant,
			mutate:    func(r *model.BookingRequest) { r.SelectedRooms = []string{"double101"} },
			wantCode:  apperrors.CodeMalformedIdentifier,
		},
		{
			name:      "end not after start",
			principal: tenant,
			mutate:    func(r *model.BookingRequest) { r.EndDate = "2024-01-01" },
			wantCode:  apperrors.CodeInvalidDateRange,
		},
		{
			name:      "store unavailable during commit",
			principal: tenant,
			setup: func(env *testEnv) {
				env.locks.err = mongotx.Classify(context.DeadlineExceeded, "lock")
			},
			wantCode: apperrors.CodeStoreUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv()
			if tt.setup != nil {
				tt.setup(env)
			}
			req := bookingRequest("double-101-Bed A")
			if tt.mutate != nil {
				tt.mutate(req)
			}
			_, err := env.service.Create(context.Background(), tt.principal, req)
			requireCode(t, err, tt.wantCode)
		})
	}
}

func TestCreate_MissingFieldsAreAllReported(t *testing.T) {
	env := newTestEnv()

	_, err := env.service.Create(context.Background(), tenant, &model.BookingRequest{})
	appErr := requireCode(t, err, apperrors.CodeValidation)

	missing, _ := appErr.Details["missingFields"].([]string)
	for _, field := range []string{"propertyId", "roomType", "selectedRooms", "moveInDate", "personCount"} {
		found := false
		for _, m := range missing {
			if m == field {
				found = true
			}
		}
		if !found {
			t.Errorf("expected %q in missing fields %v", field, missing)
		}
	}
}

func TestCreate_ValidationReportsMissingAndInvalidTogether(t *testing.T) {
	env := newTestEnv()
	req := bookingRequest("double-101-Bed A")
	req.RoomType = ""
	req.Customer.Email = "not-an-email"

	_, err := env.service.Create(context.Background(), tenant, req)
	appErr := requireCode(t, err, apperrors.CodeValidation)

	if diff := cmp.Diff([]string{"roomType"}, appErr.Details["missingFields"]); diff != "" {
		t.Errorf("missing fields mismatch (-want +got):\n%s", diff)
	}
	invalid, _ := appErr.Details["errors"].([]validator.ValidationError)
	if len(invalid) != 1 || invalid[0].Field != "customerDetails.email" {
		t.Errorf("expected the email error alongside missing fields, got %+v", appErr.Details["errors"])
	}
}

// ────────────────────────────────────────────────
// Transitions
// ────────────────────────────────────────────────

func TestApprove(t *testing.T) {
	pending := reservationOn(model.StatusPending, "2024-01-01", "2024-02-01", "double-101-Bed A")
	env := newTestEnv(pending)

	got, err := env.service.Approve(context.Background(), owner, pending.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Status != model.StatusApproved || got.ApprovedBy != owner.UserID || got.ApprovedAt == nil {
		t.Errorf("approval not stamped: %+v", got)
	}

	_, err = env.service.Approve(context.Background(), owner, pending.ID)
	appErr := requireCode(t, err, apperrors.CodeInvalidTransition)
	if appErr.Details["currentStatus"] != string(model.StatusApproved) {
		t.Errorf("expected currentStatus approved, got %v", appErr.Details["currentStatus"])
	}
	if diff := cmp.Diff([]string{"booking.approved"}, env.publisher.events); diff != "" {
		t.Errorf("events mismatch (-want +got):\n%s", diff)
	}
}

func TestApprove_Authorization(t *testing.T) {
	tests := []struct {
		name      string
		principal model.Principal
		wantCode  string
	}{
		{name: "tenant", principal: tenant, wantCode: apperrors.CodeForbidden},
		{name: "other client", principal: model.Principal{UserID: "x", Role: model.RoleClient, ClientID: "client-2"}, wantCode: apperrors.CodeForbidden},
		{name: "client without id", principal: model.Principal{UserID: "x", Role: model.RoleClient}, wantCode: apperrors.CodeForbidden},
		{name: "admin", principal: admin},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pending := reservationOn(model.StatusPending, "2024-01-01", "2024-02-01", "double-101-Bed A")
			env := newTestEnv(pending)

			_, err := env.service.Approve(context.Background(), tt.principal, pending.ID)
			if tt.wantCode == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			requireCode(t, err, tt.wantCode)
			if env.repo.get(pending.ID).Status != model.StatusPending {
				t.Error("status changed despite refusal")
			}
		})
	}
}

func TestApprove_NotFound(t *testing.T) {
	env := newTestEnv()
	_, err := env.service.Approve(context.Background(), owner, "000000000000000000000099")
	requireCode(t, err, apperrors.CodeNotFound)
}

func TestReject(t *testing.T) {
	tests := []struct {
		name     string
		status   model.BookingStatus
		reason   string
		wantCode string
	}{
		{name: "pending", status: model.StatusPending, reason: "Incomplete documents"},
		{name: "approved", status: model.StatusApproved, reason: "Owner changed plans"},
		{name: "confirmed", status: model.StatusConfirmed, reason: "Too late", wantCode: apperrors.CodeInvalidTransition},
		{name: "empty reason", status: model.StatusPending, reason: "   ", wantCode: apperrors.CodeValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := reservationOn(tt.status, "2024-01-01", "2024-02-01", "double-101-Bed A")
			env := newTestEnv(r)

			got, err := env.service.Reject(context.Background(), owner, r.ID, tt.reason)
			if tt.wantCode != "" {
				requireCode(t, err, tt.wantCode)
				if env.repo.get(r.ID).Status != tt.status {
					t.Error("status changed despite refusal")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.Status != model.StatusRejected || got.RejectionReason != tt.reason || got.RejectedBy != owner.UserID {
				t.Errorf("rejection not stored: %+v", got)
			}
		})
	}
}

func TestCancel(t *testing.T) {
	tests := []struct {
		name      string
		status    model.BookingStatus
		principal model.Principal
		wantCode  string
	}{
		{name: "tenant cancels pending", status: model.StatusPending, principal: tenant},
		{name: "owner cancels confirmed", status: model.StatusConfirmed, principal: owner},
		{name: "admin cancels approved", status: model.StatusApproved, principal: admin},
		{name: "checked in", status: model.StatusCheckedIn, principal: tenant, wantCode: apperrors.CodeInvalidTransition},
		{name: "already cancelled", status: model.StatusCancelled, principal: tenant, wantCode: apperrors.CodeInvalidTransition},
		{name: "checked out", status: model.StatusCheckedOut, principal: tenant, wantCode: apperrors.CodeInvalidTransition},
		{name: "stranger", status: model.StatusPending, principal: model.Principal{UserID: "user-9", Role: model.RoleUser}, wantCode: apperrors.CodeForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := reservationOn(tt.status, "2024-01-01", "2024-02-01", "double-101-Bed A")
			env := newTestEnv(r)

			got, err := env.service.Cancel(context.Background(), tt.principal, r.ID)
			if tt.wantCode != "" {
				appErr := requireCode(t, err, tt.wantCode)
				if tt.wantCode == apperrors.CodeInvalidTransition && appErr.Details["currentStatus"] != string(tt.status) {
					t.Errorf("expected currentStatus %s, got %v", tt.status, appErr.Details["currentStatus"])
				}
				if tt.status.IsTerminal() && appErr.Message != "Booking is already "+string(tt.status) {
					t.Errorf("unexpected message for terminal status: %q", appErr.Message)
				}
				if env.repo.get(r.ID).Status != tt.status {
					t.Error("status changed despite refusal")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.Status != model.StatusCancelled || got.CancelledAt == nil {
				t.Errorf("cancel not stamped: %+v", got)
			}
			if got.PaymentInfo.PaymentStatus != model.PaymentRefundPending {
				t.Errorf("expected refund_pending, got %s", got.PaymentInfo.PaymentStatus)
			}
		})
	}
}

// ────────────────────────────────────────────────
// Payments
// ────────────────────────────────────────────────

func TestRecordPayment_FullPaymentCompletes(t *testing.T) {
	for _, status := range []model.BookingStatus{model.StatusPending, model.StatusApproved} {
		t.Run(string(status), func(t *testing.T) {
			r := reservationOn(status, "2024-01-01", "2024-02-01", "double-101-Bed A")
			env := newTestEnv(r)
			ctx := context.Background()

			partial, err := env.service.RecordPayment(ctx, &model.PaymentEvent{
				BookingID: r.ID, Amount: 4000, Method: "online", Status: model.PaymentCompleted,
			})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if partial.PaymentInfo.PaymentStatus != model.PaymentPartial || partial.Status != status {
				t.Fatalf("expected partial payment on %s, got %s/%s", status, partial.PaymentInfo.PaymentStatus, partial.Status)
			}

			got, err := env.service.RecordPayment(ctx, &model.PaymentEvent{
				BookingID: r.ID, Amount: 10000, Method: "bank_transfer", TransactionID: "utr-9", Status: model.PaymentCompleted,
			})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.PaymentInfo.PaymentStatus != model.PaymentCompleted {
				t.Errorf("expected completed, got %s", got.PaymentInfo.PaymentStatus)
			}
			if got.OutstandingAmount != 0 || got.PaymentInfo.AmountPaid != 14000 {
				t.Errorf("expected settled ledger, got outstanding=%v paid=%v", got.OutstandingAmount, got.PaymentInfo.AmountPaid)
			}
			if got.Status != model.StatusConfirmed {
				t.Errorf("expected confirmed, got %s", got.Status)
			}
			if stored := env.repo.get(r.ID); len(stored.Payments) != 2 || stored.Status != model.StatusConfirmed {
				t.Errorf("ledger not persisted: %+v", stored)
			}
		})
	}
}

func TestRecordPayment_PendingEntryDoesNotCount(t *testing.T) {
	r := reservationOn(model.StatusPending, "2024-01-01", "2024-02-01", "double-101-Bed A")
	env := newTestEnv(r)

	got, err := env.service.RecordPayment(context.Background(), &model.PaymentEvent{
		BookingID: r.ID, Amount: 14000, Method: "online", Status: model.PaymentPending,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.OutstandingAmount != 14000 || got.Status != model.StatusPending {
		t.Errorf("pending entry should not settle: %+v", got)
	}
}

func TestRecordPayment_Refused(t *testing.T) {
	for _, status := range []model.BookingStatus{model.StatusCancelled, model.StatusRejected} {
		t.Run(string(status), func(t *testing.T) {
			r := reservationOn(status, "2024-01-01", "2024-02-01", "double-101-Bed A")
			env := newTestEnv(r)

			_, err := env.service.RecordPayment(context.Background(), &model.PaymentEvent{
				BookingID: r.ID, Amount: 100, Method: "cash", Status: model.PaymentCompleted,
			})
			requireCode(t, err, apperrors.CodeInvalidTransition)
			if len(env.repo.get(r.ID).Payments) != 0 {
				t.Error("ledger changed despite refusal")
			}
		})
	}
}

func TestRecordPayment_Validation(t *testing.T) {
	env := newTestEnv()

	_, err := env.service.RecordPayment(context.Background(), &model.PaymentEvent{BookingID: "x", Amount: -5, Method: "cheque", Status: model.PaymentCompleted})
	requireCode(t, err, apperrors.CodeValidation)

	_, err = env.service.RecordPayment(context.Background(), &model.PaymentEvent{BookingID: "000000000000000000000042", Amount: 5, Method: "cash", Status: model.PaymentCompleted})
	requireCode(t, err, apperrors.CodeNotFound)
}

func TestRecordClientPayment_RequiresOwner(t *testing.T) {
	r := reservationOn(model.StatusApproved, "2024-01-01", "2024-02-01", "double-101-Bed A")
	env := newTestEnv(r)
	event := &model.PaymentEvent{BookingID: r.ID, Amount: 14000, Method: "cash", Status: model.PaymentCompleted}

	_, err := env.service.RecordClientPayment(context.Background(), tenant, event)
	requireCode(t, err, apperrors.CodeForbidden)

	got, err := env.service.RecordClientPayment(context.Background(), owner, event)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Status != model.StatusConfirmed {
		t.Errorf("expected confirmed, got %s", got.Status)
	}
}

// ────────────────────────────────────────────────
// Reads
// ────────────────────────────────────────────────

func TestGetByID_Permissions(t *testing.T) {
	r := reservationOn(model.StatusPending, "2024-01-01", "2024-02-01", "double-101-Bed A")
	env := newTestEnv(r)

	tests := []struct {
		name      string
		principal model.Principal
		wantCode  string
	}{
		{name: "booker", principal: tenant},
		{name: "owner", principal: owner},
		{name: "admin", principal: admin},
		{name: "other user", principal: model.Principal{UserID: "user-2", Role: model.RoleUser}, wantCode: apperrors.CodeForbidden},
		{name: "other client", principal: model.Principal{UserID: "c2", Role: model.RoleClient, ClientID: "client-2"}, wantCode: apperrors.CodeForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := env.service.GetByID(context.Background(), tt.principal, r.ID)
			if tt.wantCode != "" {
				requireCode(t, err, tt.wantCode)
				return
			}
			if err != nil || got.ID != r.ID {
				t.Fatalf("expected booking %s, got %v, %v", r.ID, got, err)
			}
		})
	}
}

func TestListForUserAndClient(t *testing.T) {
	mine := reservationOn(model.StatusPending, "2024-01-01", "2024-02-01", "double-101-Bed A")
	other := reservationOn(model.StatusPending, "2024-01-01", "2024-02-01", "double-101-Bed B")
	other.UserID = "user-2"
	elsewhere := reservationOn(model.StatusPending, "2024-01-01", "2024-02-01", "double-101-Bed A")
	elsewhere.PropertyID = "prop-9"
	env := newTestEnv(mine, other, elsewhere)
	ctx := context.Background()

	userList, err := env.service.ListForUser(ctx, tenant)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(userList) != 2 {
		t.Errorf("expected 2 bookings for user-1, got %d", len(userList))
	}

	clientList, err := env.service.ListForClient(ctx, owner)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(clientList) != 2 {
		t.Errorf("expected 2 bookings on owned properties, got %d", len(clientList))
	}

	_, err = env.service.ListForClient(ctx, tenant)
	requireCode(t, err, apperrors.CodeForbidden)

	_, err = env.service.ListForUser(ctx, model.Principal{})
	requireCode(t, err, apperrors.CodeUnauthorized)
}

func TestGetAll(t *testing.T) {
	env := newTestEnv(
		reservationOn(model.StatusPending, "2024-01-01", "2024-02-01", "double-101-Bed A"),
		reservationOn(model.StatusPending, "2024-03-01", "2024-04-01", "double-101-Bed A"),
		reservationOn(model.StatusPending, "2024-05-01", "2024-06-01", "double-101-Bed A"),
	)
	env.repo.countFunc = func(ctx context.Context) (int64, error) {
		time.Sleep(5 * time.Millisecond)
		return 3, nil
	}

	for i := 0; i < 5; i++ {
		list, count, err := env.service.GetAll(context.Background(), admin, 2, 1)
		if err != nil {
			t.Fatalf("iteration %d: unexpected error: %v", i, err)
		}
		if count != 3 || len(list) != 2 {
			t.Errorf("iteration %d: expected 2 of 3, got %d of %d", i, len(list), count)
		}
	}

	_, _, err := env.service.GetAll(context.Background(), owner, 10, 0)
	requireCode(t, err, apperrors.CodeForbidden)
}

func TestGetAll_StoreUnavailable(t *testing.T) {
	env := newTestEnv()
	env.repo.countFunc = func(ctx context.Context) (int64, error) {
		return 0, mongotx.Classify(context.DeadlineExceeded, "count")
	}

	_, _, err := env.service.GetAll(context.Background(), admin, 10, 0)
	requireCode(t, err, apperrors.CodeStoreUnavailable)
}
