package rerank

import (
	"math"
	"testing"
)

func testWeights() Weights {
	return Weights{
		DistanceScale: 2.0,
		SectionWeights: map[string]float64{
			"asegurado": 1.3,
			"consiste":  0.7,
		},
		VehicleGating:    true,
		VehicleBoost:     1.2,
		SpecificityBoost: 1.4,
		MinIndicators:    2,
	}
}

func TestDetectVehicleTags(t *testing.T) {
	d := NewVehicleDetector(map[string][]string{
		"moto":   {"moto", "motocicleta", "scooter"},
		"auto":   {"coche", "automóvil", "turismo"},
		"camion": {"camión", "furgoneta"},
	})

	cases := []struct {
		query string
		want  []string
	}{
		{"¿qué cubre el seguro de moto?", []string{"moto"}},
		{"seguro para mi coche y mi scooter", []string{"auto", "moto"}},
		{"condiciones generales del seguro", nil},
		{"SEGURO DE MOTOCICLETA", []string{"moto"}},
	}
	for _, c := range cases {
		got := d.Detect(c.query)
		if len(got) != len(c.want) {
			t.Errorf("Detect(%q) = %v, expected %v", c.query, got, c.want)
			continue
		}
		for i := range got {
			if got[i] != c.want[i] {
				t.Errorf("Detect(%q) = %v, expected %v", c.query, got, c.want)
				break
			}
		}
	}
}

func TestCountIndicators(t *testing.T) {
	cases := []struct {
		text string
		want int
	}{
		{"texto legal sin nada relevante", 0},
		{"la prima anual", 1},
		{"la prima anual con una franquicia de 300 €", 3},
		{"cobertura hasta la suma asegurada, indemnización incluida", 3},
	}
	for _, c := range cases {
		if got := CountIndicators(c.text); got != c.want {
			t.Errorf("CountIndicators(%q) = %d, expected %d", c.text, got, c.want)
		}
	}
}

func TestScoreFormula(t *testing.T) {
	w := testWeights()

	// distance=0.4, asegurado section, moto hint match, >=2 indicators:
	// base 0.8 * 1.3 * 1.2 * 1.4 = 1.7472, clamped to 1.0.
	score, keep := w.Score(0.4, "asegurado", "moto-basico.pdf", "prima de 200 € con franquicia", []string{"moto"})
	if !keep {
		t.Fatal("expected candidate to be kept")
	}
	if score != 1.0 {
		t.Errorf("expected clamped score 1.0, got %f", score)
	}

	// Same candidate without boosts: plain base score.
	score, keep = w.Score(0.4, "general", "hogar.pdf", "texto plano", nil)
	if !keep {
		t.Fatal("expected candidate to be kept")
	}
	if math.Abs(score-0.8) > 1e-9 {
		t.Errorf("expected base score 0.8, got %f", score)
	}

	// Section down-weighting.
	score, _ = w.Score(0.4, "consiste", "hogar.pdf", "texto plano", nil)
	if math.Abs(score-0.56) > 1e-9 {
		t.Errorf("expected 0.8*0.7=0.56, got %f", score)
	}

	// Distance at or beyond the scale floors the base score at zero.
	score, _ = w.Score(2.5, "general", "hogar.pdf", "texto plano", nil)
	if score != 0 {
		t.Errorf("expected zero score for distance >= 2, got %f", score)
	}
}

func TestScoreVehicleGating(t *testing.T) {
	w := testWeights()

	// Hinted query, filename without the tag: dropped entirely.
	if _, keep := w.Score(0.2, "general", "auto-completo.pdf", "texto", []string{"moto"}); keep {
		t.Error("expected candidate dropped by vehicle gating")
	}

	// Gating disabled: kept without boost.
	w.VehicleGating = false
	score, keep := w.Score(0.2, "general", "auto-completo.pdf", "texto", []string{"moto"})
	if !keep {
		t.Fatal("expected candidate kept with gating disabled")
	}
	if math.Abs(score-0.9) > 1e-9 {
		t.Errorf("expected unboosted 0.9, got %f", score)
	}
}

func TestScoreBounds(t *testing.T) {
	w := testWeights()
	for _, dist := range []float64{0, 0.1, 0.5, 1, 1.5, 2, 3} {
		for _, section := range []string{"asegurado", "consiste", "general"} {
			score, keep := w.Score(dist, section, "moto.pdf", "prima € franquicia cobertura", []string{"moto"})
			if !keep {
				continue
			}
			if score < 0 || score > 1 {
				t.Errorf("score out of bounds: dist=%f section=%s score=%f", dist, section, score)
			}
		}
	}
}
