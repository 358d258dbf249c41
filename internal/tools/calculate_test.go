package tools

import (
	"context"
	"math"
	"strings"
	"testing"
)

func TestEvaluate(t *testing.T) {
	tests := []struct {
		expr    string
		want    float64
		wantErr string
	}{
		{expr: "2 + 3 * 4", want: 14},
		{expr: "(10 + 5) * 2 / 3", want: 10},
		{expr: "7 / 2", want: 3.5},
		{expr: "2 ** 10", want: 1024},
		{expr: "sqrt(16)", want: 4},
		{expr: "abs(-3.5)", want: 3.5},
		{expr: "round(2.6)", want: 3},
		{expr: "pi * 2", want: 2 * math.Pi},
		{expr: "1 / 0", wantErr: "Division by zero"},
		{expr: "", wantErr: "Invalid expression"},
		{expr: "2 +", wantErr: "Invalid expression"},
		{expr: "os.Exit(1)", wantErr: "Invalid expression"},
		{expr: "len('abc')", wantErr: "Invalid expression"},
		{expr: "'abc'", wantErr: "Invalid expression"},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			got, err := evaluate(tt.expr)
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("evaluate(%q) error = %v, want %q", tt.expr, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("evaluate(%q) unexpected error: %v", tt.expr, err)
			}
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("evaluate(%q) = %v, want %v", tt.expr, got, tt.want)
			}
		})
	}
}

func TestCalculateThroughRegistry(t *testing.T) {
	reg := NewRegistry(Calculate{})

	res := reg.Execute(context.Background(), "calculate", `{"expression":"6 * 7"}`)
	if !res.OK() {
		t.Fatalf("unexpected error: %v", res.Err)
	}
	if got := res.Content(); got != `{"expression":"6 * 7","result":42}` {
		t.Errorf("Content() = %s", got)
	}

	res = reg.Execute(context.Background(), "calculate", `{"expression":"10 / 0"}`)
	if res.OK() || res.Err.Message != "Division by zero" {
		t.Errorf("want division by zero, got %+v", res.Err)
	}

	res = reg.Execute(context.Background(), "calculate", `{}`)
	if res.OK() || !strings.Contains(res.Err.Message, "expression") {
		t.Errorf("want missing argument error, got %+v", res.Err)
	}
}
