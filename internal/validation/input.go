package validation

import (
	"fmt"
	"net/url"
	"strings"
	"unicode/utf8"
)

// Константы валидации
const (
	MinMessageLength       = 1
	MaxMessageLength       = 5000
	MaxDisputeReasonLength = 2000
	MaxCredentialsLength   = 10000
	MaxAttachmentURLLength = 500
	MaxAttachmentsCount    = 10
)

// ValidateLength проверяет длину строки.
func ValidateLength(fieldName, value string, min, max int) error {
	length := utf8.RuneCountInString(value)
	if min > 0 && length < min {
		return fmt.Errorf("%s должен быть не менее %d символов", fieldName, min)
	}
	if max > 0 && length > max {
		return fmt.Errorf("%s должен быть не более %d символов", fieldName, max)
	}
	return nil
}

// ValidateNonEmpty проверяет, что строка не пустая.
func ValidateNonEmpty(fieldName, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%s не может быть пустым", fieldName)
	}
	return nil
}

// ValidateAttachmentURL проверяет ссылку на вложение.
func ValidateAttachmentURL(link string) error {
	linkStr := strings.TrimSpace(link)
	if linkStr == "" {
		return fmt.Errorf("ссылка на вложение не может быть пустой")
	}

	if err := ValidateLength("ссылка на вложение", linkStr, 0, MaxAttachmentURLLength); err != nil {
		return err
	}

	parsedURL, err := url.Parse(linkStr)
	if err != nil {
		return fmt.Errorf("некорректный формат URL")
	}

	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return fmt.Errorf("ссылка должна начинаться с http:// или https://")
	}

	if parsedURL.Host == "" {
		return fmt.Errorf("ссылка должна содержать доменное имя")
	}
	return nil
}

// ValidateAttachments проверяет список вложений целиком.
func ValidateAttachments(links []string) error {
	if len(links) > MaxAttachmentsCount {
		return fmt.Errorf("не более %d вложений", MaxAttachmentsCount)
	}
	for _, link := range links {
		if err := ValidateAttachmentURL(link); err != nil {
			return err
		}
	}
	return nil
}

// ValidateMessageContent проверяет содержимое сообщения.
func ValidateMessageContent(content string) error {
	if content == "" {
		return fmt.Errorf("сообщение не может быть пустым")
	}

	content = strings.TrimSpace(content)

	if err := ValidateLength("сообщение", content, MinMessageLength, MaxMessageLength); err != nil {
		return err
	}

	return nil
}

// ValidateDisputeReason ограничивает длину причины спора. Пустая причина отклоняется доменом.
func ValidateDisputeReason(reason string) error {
	return ValidateLength("причина спора", strings.TrimSpace(reason), 0, MaxDisputeReasonLength)
}

// ValidateCredentials ограничивает размер передаваемых данных доступа.
func ValidateCredentials(credentials string) error {
	return ValidateLength("данные доступа", credentials, 0, MaxCredentialsLength)
}
