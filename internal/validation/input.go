package validation

import (
	"fmt"
	"net/url"
	"strings"
	"unicode/utf8"
)

// Константы валидации
const (
	MinPostTitleLength       = 3
	MaxPostTitleLength       = 200
	MinPostDescriptionLength = 10
	MaxPostDescriptionLength = 5000
	MinBidDescriptionLength  = 10
	MaxBidDescriptionLength  = 500
	MaxReviewDescription     = 500
	MinStars                 = 1
	MaxStars                 = 5
	MinReportDetailLength    = 5
	MaxReportDetailLength    = 2000
	MinMessageLength         = 1
	MaxMessageLength         = 5000
	MaxImageURLLength        = 500
)

// ValidateLength проверяет длину строки в рунах.
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

// ValidatePostTitle проверяет заголовок объявления.
func ValidatePostTitle(title string) error {
	if err := ValidateNonEmpty("заголовок объявления", title); err != nil {
		return err
	}
	return ValidateLength("заголовок объявления", strings.TrimSpace(title), MinPostTitleLength, MaxPostTitleLength)
}

// ValidatePostDescription проверяет описание объявления.
func ValidatePostDescription(description string) error {
	if err := ValidateNonEmpty("описание объявления", description); err != nil {
		return err
	}
	return ValidateLength("описание объявления", strings.TrimSpace(description), MinPostDescriptionLength, MaxPostDescriptionLength)
}

// ValidateBidDescription проверяет описание отклика (от 10 до 500 символов).
func ValidateBidDescription(description string) error {
	if err := ValidateNonEmpty("описание отклика", description); err != nil {
		return err
	}
	return ValidateLength("описание отклика", description, MinBidDescriptionLength, MaxBidDescriptionLength)
}

// ValidateBidPrice проверяет цену отклика против бизнес-минимума.
func ValidateBidPrice(price, minPrice int64) error {
	if price <= 0 {
		return fmt.Errorf("цена должна быть положительной")
	}
	if price < minPrice {
		return fmt.Errorf("цена не может быть ниже минимальной (%d)", minPrice)
	}
	return nil
}

// ValidateStars проверяет оценку отзыва.
func ValidateStars(stars int) error {
	if stars < MinStars || stars > MaxStars {
		return fmt.Errorf("оценка должна быть от %d до %d", MinStars, MaxStars)
	}
	return nil
}

// ValidateReviewDescription проверяет текст отзыва.
func ValidateReviewDescription(description *string) error {
	if description == nil || *description == "" {
		return nil
	}
	return ValidateLength("текст отзыва", strings.TrimSpace(*description), 0, MaxReviewDescription)
}

// ValidateReportDetail проверяет текст жалобы.
func ValidateReportDetail(detail string) error {
	if err := ValidateNonEmpty("текст жалобы", detail); err != nil {
		return err
	}
	return ValidateLength("текст жалобы", strings.TrimSpace(detail), MinReportDetailLength, MaxReportDetailLength)
}

// ValidateMessageContent проверяет содержимое сообщения.
func ValidateMessageContent(content string) error {
	if err := ValidateNonEmpty("сообщение", content); err != nil {
		return err
	}
	return ValidateLength("сообщение", strings.TrimSpace(content), MinMessageLength, MaxMessageLength)
}

// ValidateImageURL проверяет ссылку на изображение из хранилища.
func ValidateImageURL(link *string) error {
	if link == nil || *link == "" {
		return nil
	}

	linkStr := strings.TrimSpace(*link)
	if err := ValidateLength("ссылка на изображение", linkStr, 0, MaxImageURLLength); err != nil {
		return err
	}

	parsedURL, err := url.Parse(linkStr)
	if err != nil {
		return fmt.Errorf("некорректный формат URL")
	}

	// Допускаем относительные ссылки внутри /media, иначе требуем http(s).
	if parsedURL.Scheme == "" {
		if !strings.HasPrefix(parsedURL.Path, "/media/") {
			return fmt.Errorf("относительная ссылка должна указывать в /media")
		}
		return nil
	}

	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return fmt.Errorf("ссылка должна начинаться с http:// или https://")
	}
	if parsedURL.Host == "" {
		return fmt.Errorf("ссылка должна содержать доменное имя")
	}
	return nil
}
