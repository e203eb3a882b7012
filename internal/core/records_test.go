package core

import (
	"context"
	"errors"
	"testing"
)

func TestRecords_RequireCaller(t *testing.T) {
	svc := newTestService(t, newMemStore(), &recordingSender{})
	ctx := context.Background()

	if _, err := svc.ListRecords(ctx, Caller{}, MealPlans); !errors.Is(err, ErrUnauthenticated) {
		t.Errorf("ListRecords = %v, want ErrUnauthenticated", err)
	}
	if _, err := svc.CreateRecord(ctx, Caller{}, MealPlans, Record{}); !errors.Is(err, ErrUnauthenticated) {
		t.Errorf("CreateRecord = %v, want ErrUnauthenticated", err)
	}
	if _, err := svc.Summary(ctx, Caller{}); !errors.Is(err, ErrUnauthenticated) {
		t.Errorf("Summary = %v, want ErrUnauthenticated", err)
	}
}

func TestRecords_UnknownCollection(t *testing.T) {
	svc := newTestService(t, newMemStore(), &recordingSender{})
	_, err := svc.ListRecords(context.Background(), Caller{UID: "u1"}, "recipes")
	if !errors.Is(err, ErrUnknownCollection) {
		t.Errorf("ListRecords = %v, want ErrUnknownCollection", err)
	}
	if MapError(err).Code != "REC002" {
		t.Errorf("MapError code = %q, want REC002", MapError(err).Code)
	}
}

func TestRecords_Lifecycle(t *testing.T) {
	store := newMemStore()
	svc := newTestService(t, store, &recordingSender{})
	ctx := context.Background()
	caller := Caller{UID: "u1"}

	id, err := svc.CreateRecord(ctx, caller, MealPlans, Record{
		"name":      "Soup",
		"calories":  float64(250),
		"id":        "client-chosen",
		"createdAt": "yesterday",
	})
	if err != nil {
		t.Fatalf("CreateRecord: %v", err)
	}
	if id == "client-chosen" {
		t.Error("client-supplied id was kept")
	}

	if err := svc.UpdateRecord(ctx, caller, MealPlans, id, Record{"status": "eaten"}); err != nil {
		t.Fatalf("UpdateRecord: %v", err)
	}

	recs, err := svc.ListRecords(ctx, caller, MealPlans)
	if err != nil {
		t.Fatalf("ListRecords: %v", err)
	}
	if len(recs) != 1 || recs[0]["status"] != "eaten" || recs[0]["name"] != "Soup" {
		t.Errorf("records = %v", recs)
	}
	if _, ok := recs[0][FieldCreatedAt]; ok {
		t.Error("client-supplied createdAt was stored")
	}

	other := Caller{UID: "u2"}
	if err := svc.DeleteRecord(ctx, other, MealPlans, id); !errors.Is(err, ErrRecordNotFound) {
		t.Errorf("DeleteRecord by other owner = %v, want ErrRecordNotFound", err)
	}
	if err := svc.DeleteRecord(ctx, caller, MealPlans, id); err != nil {
		t.Fatalf("DeleteRecord: %v", err)
	}
	if recs, _ := svc.ListRecords(ctx, caller, MealPlans); len(recs) != 0 {
		t.Errorf("records after delete = %v", recs)
	}
}

func TestRecords_InvalidPayload(t *testing.T) {
	svc := newTestService(t, newMemStore(), &recordingSender{})
	ctx := context.Background()
	caller := Caller{UID: "u1"}

	if _, err := svc.CreateRecord(ctx, caller, Feedback, nil); !errors.Is(err, ErrInvalidRecord) {
		t.Errorf("CreateRecord(nil) = %v, want ErrInvalidRecord", err)
	}
	if err := svc.UpdateRecord(ctx, caller, Feedback, "", Record{}); !errors.Is(err, ErrInvalidRecord) {
		t.Errorf("UpdateRecord(no id) = %v, want ErrInvalidRecord", err)
	}
	if err := svc.DeleteRecord(ctx, caller, Feedback, ""); !errors.Is(err, ErrInvalidRecord) {
		t.Errorf("DeleteRecord(no id) = %v, want ErrInvalidRecord", err)
	}
}

func TestListRecords_IngredientStockLevel(t *testing.T) {
	store := newMemStore()
	store.add("u1", Ingredients, Record{"id": "a", "stock": float64(20)})
	store.add("u1", Ingredients, Record{"id": "b", "stock": float64(7)})
	store.add("u1", Ingredients, Record{"id": "c"})
	svc := newTestService(t, store, &recordingSender{})

	recs, err := svc.ListRecords(context.Background(), Caller{UID: "u1"}, Ingredients)
	if err != nil {
		t.Fatal(err)
	}

	want := map[string]string{"a": StockHigh, "b": StockMedium, "c": StockLow}
	for _, rec := range recs {
		id := rec[FieldID].(string)
		if rec[FieldStockLevel] != want[id] {
			t.Errorf("%s stockLevel = %v, want %s", id, rec[FieldStockLevel], want[id])
		}
	}
}

func TestSummary(t *testing.T) {
	store := newMemStore()
	store.add("u1", MealPlans, Record{"calories": float64(120), "status": "planned"})
	store.add("u1", Feedback, Record{"message": "hi"})
	sender := &recordingSender{}
	svc := newTestService(t, store, sender)

	got, err := svc.Summary(context.Background(), Caller{UID: "u1"})
	if err != nil {
		t.Fatal(err)
	}
	if got.TotalMealPlans != 1 || got.TotalFeedback != 1 || got.TotalCalories != 120 {
		t.Errorf("summary = %+v", got)
	}
	if len(sender.messages()) != 0 {
		t.Error("Summary must not send mail")
	}
}

func TestPing(t *testing.T) {
	store := newMemStore()
	store.pingErr = errors.New("down")
	svc := newTestService(t, store, &recordingSender{})
	if err := svc.Ping(context.Background()); err == nil {
		t.Error("Ping should surface store error")
	}
}
