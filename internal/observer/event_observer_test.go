package observer

import (
	"context"
	"testing"
	"time"
)

func TestMetricsObserver_Counters(t *testing.T) {
	metrics := NewMetricsObserver()
	ctx := context.Background()

	metrics.OnEvent(ctx, UploadEvent{EventType: AnalysisStarted})
	metrics.OnEvent(ctx, UploadEvent{EventType: AnalysisCompleted, ProcessingTime: 2 * time.Second})
	metrics.OnEvent(ctx, UploadEvent{EventType: AnalysisStarted})
	metrics.OnEvent(ctx, UploadEvent{EventType: AnalysisFailed})
	metrics.OnEvent(ctx, UploadEvent{EventType: ResultSuperseded})

	got := metrics.GetMetrics()
	if got["total_analyses"] != int64(2) {
		t.Errorf("Expected 2 total analyses, got %v", got["total_analyses"])
	}
	if got["successful_analyses"] != int64(1) {
		t.Errorf("Expected 1 successful analysis, got %v", got["successful_analyses"])
	}
	if got["failed_analyses"] != int64(1) {
		t.Errorf("Expected 1 failed analysis, got %v", got["failed_analyses"])
	}
	if got["superseded_analyses"] != int64(1) {
		t.Errorf("Expected 1 superseded analysis, got %v", got["superseded_analyses"])
	}
	if got["avg_processing_time"] != 2*time.Second {
		t.Errorf("Unexpected average processing time: %v", got["avg_processing_time"])
	}
}

type recordingObserver struct {
	name   string
	events []UploadEvent
}

func (r *recordingObserver) OnEvent(ctx context.Context, event UploadEvent) {
	r.events = append(r.events, event)
}

func (r *recordingObserver) GetObserverName() string { return r.name }

func TestEventPublisher_SubscribeAndNotify(t *testing.T) {
	publisher := NewEventPublisher()
	first := &recordingObserver{name: "first"}
	second := &recordingObserver{name: "second"}

	publisher.Subscribe(first)
	publisher.Subscribe(second)
	publisher.NotifyObservers(context.Background(), UploadEvent{EventType: AnalysisStarted, FileName: "cat.jpg"})

	if len(first.events) != 1 || len(second.events) != 1 {
		t.Fatalf("Expected both observers to be notified, got %d and %d", len(first.events), len(second.events))
	}
	if first.events[0].FileName != "cat.jpg" {
		t.Errorf("Unexpected event payload: %+v", first.events[0])
	}

	publisher.Unsubscribe(first)
	publisher.NotifyObservers(context.Background(), UploadEvent{EventType: AnalysisCompleted})

	if len(first.events) != 1 {
		t.Error("Expected unsubscribed observer to stop receiving events")
	}
	if len(second.events) != 2 {
		t.Errorf("Expected remaining observer to keep receiving events, got %d", len(second.events))
	}
}
