package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/refind-app/refind-backend/internal/models"
)

// Константы валидации
const (
	MinUsernameLength = 3
	MaxUsernameLength = 30

	MinItemTitleLength       = 3
	MaxItemTitleLength       = 100
	MaxItemDescriptionLength = 1000
	MaxItemLocationLength    = 200

	MinClaimMessageLength = 1
	MaxClaimMessageLength = 500

	MaxPhoneLength = 20
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

// ValidateEmail проверяет формат email.
func ValidateEmail(email string) error {
	if email == "" {
		return fmt.Errorf("email обязателен")
	}

	email = strings.ToLower(strings.TrimSpace(email))

	parts := strings.Split(email, "@")
	if len(parts) != 2 {
		return fmt.Errorf("некорректный формат email")
	}

	localPart := parts[0]
	domainPart := parts[1]

	if len(localPart) == 0 || len(localPart) > 64 {
		return fmt.Errorf("локальная часть email должна быть от 1 до 64 символов")
	}

	localRegex := regexp.MustCompile(`^[a-z0-9._+-]+$`)
	if !localRegex.MatchString(localPart) {
		return fmt.Errorf("локальная часть email содержит недопустимые символы")
	}

	domainRegex := regexp.MustCompile(`^[a-z0-9.-]+\.[a-z]{2,}$`)
	if len(domainPart) > 255 || !domainRegex.MatchString(domainPart) {
		return fmt.Errorf("доменная часть email имеет некорректный формат")
	}

	return nil
}

// ValidateUsername проверяет имя пользователя.
func ValidateUsername(username string) error {
	if username == "" {
		return fmt.Errorf("имя пользователя обязательно")
	}

	username = strings.TrimSpace(username)

	if err := ValidateLength("имя пользователя", username, MinUsernameLength, MaxUsernameLength); err != nil {
		return err
	}

	usernameRegex := regexp.MustCompile(`^[a-zA-Z0-9_]+$`)
	if !usernameRegex.MatchString(username) {
		return fmt.Errorf("имя пользователя может содержать только буквы, цифры и подчеркивание")
	}

	if unicode.IsDigit(rune(username[0])) {
		return fmt.Errorf("имя пользователя не может начинаться с цифры")
	}

	return nil
}

// ValidatePhone проверяет номер телефона (необязательное поле).
func ValidatePhone(phone *string) error {
	if phone == nil || *phone == "" {
		return nil
	}

	p := strings.TrimSpace(*phone)
	if len(p) > MaxPhoneLength {
		return fmt.Errorf("телефон должен быть не более %d символов", MaxPhoneLength)
	}

	phoneRegex := regexp.MustCompile(`^\+?[0-9\s\-()]{5,}$`)
	if !phoneRegex.MatchString(p) {
		return fmt.Errorf("некорректный формат телефона")
	}

	return nil
}

// ValidateItemType проверяет тип объявления.
func ValidateItemType(itemType string) error {
	if !models.ValidItemTypes[itemType] {
		return fmt.Errorf("тип объявления должен быть lost или found")
	}
	return nil
}

// ValidateItemStatus проверяет статус объявления.
func ValidateItemStatus(status string) error {
	if !models.ValidItemStatuses[status] {
		return fmt.Errorf("статус объявления должен быть active или resolved")
	}
	return nil
}

// ValidateItemCategory проверяет категорию объявления.
func ValidateItemCategory(category string) error {
	if !models.ValidItemCategories[category] {
		return fmt.Errorf("неизвестная категория объявления")
	}
	return nil
}

// ValidateItemTitle проверяет заголовок объявления.
func ValidateItemTitle(title string) error {
	if err := ValidateNonEmpty("заголовок объявления", title); err != nil {
		return err
	}
	return ValidateLength("заголовок объявления", strings.TrimSpace(title), MinItemTitleLength, MaxItemTitleLength)
}

// ValidateItemDescription проверяет описание объявления.
func ValidateItemDescription(description string) error {
	if err := ValidateNonEmpty("описание объявления", description); err != nil {
		return err
	}
	return ValidateLength("описание объявления", strings.TrimSpace(description), 0, MaxItemDescriptionLength)
}

// ValidateItemLocation проверяет место находки или потери.
func ValidateItemLocation(location string) error {
	if err := ValidateNonEmpty("место", location); err != nil {
		return err
	}
	return ValidateLength("место", strings.TrimSpace(location), 0, MaxItemLocationLength)
}

// ValidateClaimMessage проверяет сообщение заявки.
func ValidateClaimMessage(message string) error {
	if err := ValidateNonEmpty("сообщение заявки", message); err != nil {
		return err
	}
	return ValidateLength("сообщение заявки", message, MinClaimMessageLength, MaxClaimMessageLength)
}
