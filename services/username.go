package services

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"synca/repository"

	"github.com/fiam/gounidecode/unidecode"
)

var (
	slugInvalid   = regexp.MustCompile(`[^a-z0-9_\s-]`)
	slugSeparator = regexp.MustCompile(`[-\s]+`)
)

// Slugify chuyển về ASCII, chữ thường, khoảng trắng thành dấu gạch ngang
func Slugify(s string) string {
	s = strings.ToLower(unidecode.Unidecode(strings.TrimSpace(s)))
	s = slugInvalid.ReplaceAllString(s, "")
	s = slugSeparator.ReplaceAllString(s, "-")
	return strings.Trim(s, "-_")
}

// UniqueUsername sinh username từ họ tên, sau đó phần trước @ của email,
// cuối cùng là "tenant"; trùng thì thêm hậu tố số
func UniqueUsername(ctx context.Context, users repository.UserRepository, firstName, lastName, email string) (string, error) {
	base := Slugify(strings.TrimSpace(firstName + " " + lastName))
	if base == "" {
		local := email
		if i := strings.Index(email, "@"); i >= 0 {
			local = email[:i]
		}
		base = Slugify(local)
	}
	if base == "" {
		base = "tenant"
	}
	if len(base) > 140 {
		base = strings.Trim(base[:140], "-_")
	}

	candidate := base
	for suffix := 1; ; suffix++ {
		exists, err := users.UsernameExists(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !exists {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s%d", base, suffix)
	}
}
