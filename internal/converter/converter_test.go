package converter

import (
	"testing"

	"vows-and-wishes/internal/delivery/dto"
	"vows-and-wishes/internal/domain/entity"

	"github.com/shopspring/decimal"
)

func TestBookedSlots_ExpandsAllDay(t *testing.T) {
	appointments := []entity.Appointment{
		{Date: "2025-12-02", Time: "12:00"},
		{Date: "2025-12-01", Time: entity.AllDay},
		{Date: "2025-12-01", Time: "10:00"},
	}

	slots := BookedSlots(appointments)
	if len(slots) != len(entity.TimeSlots)+1 {
		t.Fatalf("expected %d slots, got %d: %v", len(entity.TimeSlots)+1, len(slots), slots)
	}
	if slots[0] != (dto.BookedSlot{Date: "2025-12-01", Time: "10:00"}) {
		t.Fatalf("expected slots sorted by date then time, got %v", slots[0])
	}
	if slots[len(slots)-1] != (dto.BookedSlot{Date: "2025-12-02", Time: "12:00"}) {
		t.Fatalf("unexpected last slot %v", slots[len(slots)-1])
	}
}

func TestBookedDates_Distinct(t *testing.T) {
	dates := BookedDates([]entity.Appointment{
		{Date: "2025-12-03", Time: "10:00"},
		{Date: "2025-12-01", Time: entity.AllDay},
		{Date: "2025-12-03", Time: "12:00"},
	})
	if len(dates) != 2 || dates[0] != "2025-12-01" || dates[1] != "2025-12-03" {
		t.Fatalf("unexpected dates %v", dates)
	}
}

func TestServiceToResponse_RatingAndMessagingPhone(t *testing.T) {
	override := "919167597375"
	resp := ServiceToResponse(&entity.Service{
		Name:           "Royal Palace",
		Rating:         decimal.RequireFromString("4.8"),
		MessagingPhone: &override,
	})
	if resp.Rating != 4.8 {
		t.Fatalf("expected rating 4.8, got %v", resp.Rating)
	}
	if resp.MessagingPhone != override {
		t.Fatalf("expected messaging phone %q, got %q", override, resp.MessagingPhone)
	}

	if got := ServicesToResponses(nil); got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil slice, got %v", got)
	}
}
