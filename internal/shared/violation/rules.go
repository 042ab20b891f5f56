package violation

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// NotBlank rejects strings made only of whitespace. Pair it with
// validation.Required, string rules skip empty values.
var NotBlank = validation.NewStringRuleWithError(
	func(s string) bool { return strings.TrimSpace(s) != "" },
	validation.NewError("validation_not_blank", "must not be blank"),
)

// Required is validation.Required with the API's message.
var Required = validation.Required.Error("must not be blank")
