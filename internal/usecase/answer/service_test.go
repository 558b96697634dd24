package answer

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"
)

type mockRetriever struct {
	context string
	err     error
}

func (m *mockRetriever) Retrieve(context.Context, string, int) (string, error) {
	return m.context, m.err
}

type mockGenerator struct {
	answer     string
	err        error
	gotContext string
	gotQuery   string
}

func (m *mockGenerator) Generate(_ context.Context, contextBlock, query string) (string, error) {
	m.gotContext = contextBlock
	m.gotQuery = query
	return m.answer, m.err
}

func TestAnswer_PassesContextAndQuery(t *testing.T) {
	gen := &mockGenerator{answer: "Khách hàng Lan có lịch hẹn ngày mai."}
	svc := New(&mockRetriever{context: "✅ Đã tìm thấy khách hàng theo tên: Lan\n\n..."}, gen, zap.NewNop())

	res, err := svc.Answer(context.Background(), "lịch hẹn của Lan", 3)
	if err != nil {
		t.Fatalf("Answer: %v", err)
	}
	if res.Answer != gen.answer {
		t.Errorf("answer: got %q", res.Answer)
	}
	if res.Context == "" || res.Context != gen.gotContext {
		t.Errorf("context not passed through: result %q, generator saw %q", res.Context, gen.gotContext)
	}
	if gen.gotQuery != "lịch hẹn của Lan" {
		t.Errorf("query: generator saw %q", gen.gotQuery)
	}
}

func TestAnswer_RetrieverErrorStopsGeneration(t *testing.T) {
	gen := &mockGenerator{answer: "should not be produced"}
	svc := New(&mockRetriever{err: errors.New("store down")}, gen, zap.NewNop())

	if _, err := svc.Answer(context.Background(), "q", 3); err == nil {
		t.Fatal("expected error")
	}
	if gen.gotQuery != "" {
		t.Error("generator must not be called when retrieval fails")
	}
}

func TestAnswer_GeneratorErrorPropagates(t *testing.T) {
	svc := New(&mockRetriever{context: "ctx"}, &mockGenerator{err: errors.New("provider down")}, zap.NewNop())

	if _, err := svc.Answer(context.Background(), "q", 3); err == nil {
		t.Fatal("expected error")
	}
}
