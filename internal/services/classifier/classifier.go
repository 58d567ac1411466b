// Package classifier wraps the trained default-probability model. The model is
// an ONNX export of the tabular training pipeline and is treated as opaque:
// features in, probability of default out.
package classifier

import (
	"context"
	"fmt"
	"os"
	"sync"

	ort "github.com/yalue/onnxruntime_go"

	"credit-risk-engine/internal/config"
	"credit-risk-engine/internal/models"
)

// Categorical encodings baked in at model export time. These must match the
// training pipeline; an unseen value encodes as -1.
var (
	maritalStatusVocab = map[string]float32{
		"single":   0,
		"married":  1,
		"divorced": 2,
		"widowed":  3,
	}
	ageGroupVocab = map[models.AgeGroup]float32{
		models.AgeGroupYoung:  0,
		models.AgeGroupAdult:  1,
		models.AgeGroupMature: 2,
		models.AgeGroupSenior: 3,
	}
)

// Model is an explicitly owned handle on the classifier artifact. The ONNX
// session is loaded lazily on first use and shared by all subsequent calls;
// Run is safe for concurrent use.
type Model struct {
	modelPath   string
	libraryPath string

	once    sync.Once
	session *ort.DynamicAdvancedSession
	loadErr error
}

// NewModel creates an unloaded model handle. No I/O happens until the first
// Predict call.
func NewModel(cfg *config.Config) *Model {
	return &Model{
		modelPath:   cfg.ModelPath,
		libraryPath: cfg.OnnxRuntimeLib,
	}
}

// load initializes the ONNX session exactly once. Any failure is remembered
// and surfaced as ErrModelUnavailable on every call: the classifier is a
// mandatory dependency and never degrades to a fallback score.
func (m *Model) load() error {
	m.once.Do(func() {
		if _, err := os.Stat(m.modelPath); err != nil {
			m.loadErr = fmt.Errorf("%w: %s", models.ErrModelUnavailable, m.modelPath)
			return
		}

		if m.libraryPath != "" {
			ort.SetSharedLibraryPath(m.libraryPath)
		}
		if !ort.IsInitialized() {
			if err := ort.InitializeEnvironment(); err != nil {
				m.loadErr = fmt.Errorf("%w: initialize onnxruntime: %v", models.ErrModelUnavailable, err)
				return
			}
		}

		session, err := ort.NewDynamicAdvancedSession(
			m.modelPath,
			[]string{"input"},
			[]string{"probabilities"},
			nil,
		)
		if err != nil {
			m.loadErr = fmt.Errorf("%w: open session: %v", models.ErrModelUnavailable, err)
			return
		}
		m.session = session
	})
	return m.loadErr
}

// Predict runs the classifier over a feature vector and returns the
// probability of default in [0,1].
func (m *Model) Predict(ctx context.Context, fv *models.FeatureVector) (float64, error) {
	if err := m.load(); err != nil {
		return 0, err
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	encoded := Encode(fv)
	input, err := ort.NewTensor(ort.NewShape(1, int64(len(encoded))), encoded)
	if err != nil {
		return 0, fmt.Errorf("failed to create input tensor: %w", err)
	}
	defer input.Destroy()

	outputs := []ort.Value{nil}
	if err := m.session.Run([]ort.Value{input}, outputs); err != nil {
		return 0, fmt.Errorf("classifier inference failed: %w", err)
	}

	out, ok := outputs[0].(*ort.Tensor[float32])
	if !ok {
		return 0, fmt.Errorf("classifier returned unexpected output type %T", outputs[0])
	}
	defer out.Destroy()

	probs := out.GetData()
	if len(probs) == 0 {
		return 0, fmt.Errorf("classifier returned empty probabilities")
	}

	// Binary output is [p(repay), p(default)]; the last entry is class 1.
	return float64(probs[len(probs)-1]), nil
}

// Close releases the ONNX session if one was loaded.
func (m *Model) Close() {
	if m.session != nil {
		_ = m.session.Destroy()
		m.session = nil
	}
}

// Encode flattens a feature vector into the float tensor layout the exported
// model expects, in FeatureColumns order.
func Encode(fv *models.FeatureVector) []float32 {
	return []float32{
		float32(fv.PrincipalAmount),
		float32(fv.OutstandingAmount),
		float32(fv.OutstandingRatio),
		float32(fv.AvgBillGap),
		float32(fv.LateRatio),
		float32(fv.PaidRatio),
		encodeCategory(maritalStatusVocab, fv.MaritalStatus),
		encodeAgeGroup(fv.AgeGroup),
	}
}

func encodeCategory(vocab map[string]float32, value string) float32 {
	if v, ok := vocab[value]; ok {
		return v
	}
	return -1
}

func encodeAgeGroup(group models.AgeGroup) float32 {
	if v, ok := ageGroupVocab[group]; ok {
		return v
	}
	return -1
}
