package classifier_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"credit-risk-engine/internal/config"
	"credit-risk-engine/internal/models"
	"credit-risk-engine/internal/services/classifier"
)

func TestPredict_MissingArtifactIsFatal(t *testing.T) {
	model := classifier.NewModel(&config.Config{ModelPath: "/nonexistent/model.onnx"})

	_, err := model.Predict(context.Background(), &models.FeatureVector{})

	assert.ErrorIs(t, err, models.ErrModelUnavailable)

	// The load failure is remembered; every subsequent call fails the same way.
	_, err = model.Predict(context.Background(), &models.FeatureVector{})
	assert.ErrorIs(t, err, models.ErrModelUnavailable)
}

func TestEncode_FixedShapeAndOrder(t *testing.T) {
	fv := &models.FeatureVector{
		PrincipalAmount:   10000,
		OutstandingAmount: 4000,
		OutstandingRatio:  0.4,
		AvgBillGap:        3,
		LateRatio:         0.5,
		PaidRatio:         0.9,
		MaritalStatus:     "married",
		AgeGroup:          models.AgeGroupAdult,
	}

	encoded := classifier.Encode(fv)

	assert.Equal(t, []float32{10000, 4000, 0.4, 3, 0.5, 0.9, 1, 1}, encoded)
	assert.Len(t, encoded, len(models.FeatureColumns()))
}

func TestEncode_UnknownCategoryEncodesAsUnseen(t *testing.T) {
	fv := &models.FeatureVector{MaritalStatus: "unspecified"}

	encoded := classifier.Encode(fv)

	assert.Equal(t, float32(-1), encoded[6])
}
