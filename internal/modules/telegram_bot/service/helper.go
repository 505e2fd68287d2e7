package service

import (
	"fmt"
	"strconv"
	"strings"

	"strategy_builder/internal/models"
)

// f2: число без лишних нулей.
func f2(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func parseSide(s string) (models.Side, error) {
	side, err := models.ParseSide(s)
	if err != nil {
		return "", fmt.Errorf("сторона должна быть buy или sell, а не %q", s)
	}
	return side, nil
}

// parseIndex: номер группы/условия в чате с 1, в билдере с 0.
func parseIndex(what, s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("%s: ожидается номер от 1, получено %q", what, s)
	}
	return n - 1, nil
}

func parseFloat(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", "."), 64)
	if err != nil {
		return 0, fmt.Errorf("не число: %q", s)
	}
	return v, nil
}
