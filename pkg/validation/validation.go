// Package validation gates step advancement in a workflow run. Validation
// is a pure function of the step definition, the accumulated answers and
// the photos captured for the step; it is re-run in full on every forward
// navigation attempt, never incrementally.
package validation

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/inspecta/inspecta/pkg/models"
)

// PhotosKey is the error-map key used for photo-count violations on
// PHOTO steps.
const PhotosKey = "photos"

// ErrorMap maps a field ID (or PhotosKey) to a user-facing message.
// It is rebuilt from scratch on every validation pass.
type ErrorMap map[string]string

// Empty reports whether the step passed validation.
func (m ErrorMap) Empty() bool { return len(m) == 0 }

var emailShape = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ValidateStep checks a step against the accumulated answer map and the
// photos captured for it.
//
// Only required presence, email shape, numeric bounds, string length and
// photo counts are enforced here. Pattern, URL and phone shapes are left
// to input-level enforcement on purpose; this mirrors how the forms are
// rendered and keeps the two layers from disagreeing.
func ValidateStep(step *models.WorkflowStep, answers map[string]any, photos []*models.CapturedPhoto) ErrorMap {
	errors := ErrorMap{}

	if step == nil {
		return errors
	}

	if step.StepType == models.StepTypeForm {
		for _, field := range step.Fields() {
			validateField(field, answers[field.ID], errors)
		}
	}

	if step.StepType == models.StepTypePhoto {
		count := len(photos)
		if step.MinPhotos > 0 && count < step.MinPhotos {
			errors[PhotosKey] = fmt.Sprintf("Mínimo de %d fotos necessário", step.MinPhotos)
		}

		if step.MaxPhotos != nil && count > *step.MaxPhotos {
			errors[PhotosKey] = fmt.Sprintf("Máximo de %d fotos permitido", *step.MaxPhotos)
		}
	}

	return errors
}

func validateField(field *models.Field, value any, errors ErrorMap) {
	if field.IsRequired && isMissing(value) {
		errors[field.ID] = "Campo obrigatório"

		return
	}

	if isMissing(value) {
		return
	}

	switch field.FieldType {
	case models.FieldTypeEmail:
		if s, ok := value.(string); ok && !emailShape.MatchString(s) {
			errors[field.ID] = "Email inválido"
		}

	case models.FieldTypeNumber:
		number, ok := toFloat(value)
		if !ok {
			errors[field.ID] = "Número inválido"

			return
		}

		if field.MinValue != nil && number < *field.MinValue {
			errors[field.ID] = fmt.Sprintf("Valor mínimo: %v", *field.MinValue)
		}

		if field.MaxValue != nil && number > *field.MaxValue {
			errors[field.ID] = fmt.Sprintf("Valor máximo: %v", *field.MaxValue)
		}

	case models.FieldTypeText, models.FieldTypeTextArea:
		s, ok := value.(string)
		if !ok {
			return
		}

		length := len([]rune(s))
		if field.MinLength != nil && length < *field.MinLength {
			errors[field.ID] = fmt.Sprintf("Mínimo %d caracteres", *field.MinLength)
		}

		if field.MaxLength != nil && length > *field.MaxLength {
			errors[field.ID] = fmt.Sprintf("Máximo %d caracteres", *field.MaxLength)
		}
	}
}

// isMissing defines "no answer" for required checks: nil, empty string,
// empty selection, unchecked checkbox. Numeric zero is a real answer.
func isMissing(value any) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return v == ""
	case bool:
		return !v
	case []string:
		return len(v) == 0
	case []any:
		return len(v) == 0
	default:
		return false
	}
}

func toFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case string:
		f, err := strconv.ParseFloat(v, 64)

		return f, err == nil
	default:
		return 0, false
	}
}
