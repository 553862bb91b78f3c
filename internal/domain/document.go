package domain

import (
	"fmt"
	"strings"
)

// 税号位数要求
const (
	// IndividualDocumentDigits 自然人税号位数
	IndividualDocumentDigits = 11
	// OrganizationDocumentDigits 法人税号位数
	OrganizationDocumentDigits = 14
)

// ValidationError 表示字段级校验错误
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// NewValidationError 创建字段校验错误
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// CleanDocument 去除税号中的所有非数字字符
func CleanDocument(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ValidateDocument 校验税号并返回纯数字形式
//
// 自然人要求 11 位数字，法人要求 14 位数字，
// 不符合时返回指向 document 字段的 ValidationError。
func ValidateDocument(raw string, kind ClientKind) (string, error) {
	digits := CleanDocument(raw)

	switch kind {
	case KindIndividual:
		if len(digits) != IndividualDocumentDigits {
			return "", NewValidationError("document", "individual document must have 11 digits")
		}
	case KindOrganization:
		if len(digits) != OrganizationDocumentDigits {
			return "", NewValidationError("document", "organization document must have 14 digits")
		}
	default:
		return "", NewValidationError("kind", "unknown client kind")
	}

	return digits, nil
}

// FormatDocument 将税号格式化为带标点的显示形式
//
// 11 位: ###.###.###-##
// 14 位: ##.###.###/####-##
// 位数不符合预期时原样返回输入，不报错。
func FormatDocument(raw string, kind ClientKind) string {
	digits := CleanDocument(raw)

	if kind == KindIndividual && len(digits) == IndividualDocumentDigits {
		return fmt.Sprintf("%s.%s.%s-%s", digits[:3], digits[3:6], digits[6:9], digits[9:])
	}
	if kind == KindOrganization && len(digits) == OrganizationDocumentDigits {
		return fmt.Sprintf("%s.%s.%s/%s-%s", digits[:2], digits[2:5], digits[5:8], digits[8:12], digits[12:])
	}

	return raw
}
