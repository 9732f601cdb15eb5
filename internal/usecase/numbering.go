package usecase

import (
	"context"
	"fmt"
	"time"
)

type numberCounter func(ctx context.Context, prefix string) (int, error)

// nextNumber builds "PREFIX-YYYYMM-NNNN" sequences per month.
func nextNumber(ctx context.Context, kind string, now time.Time, count numberCounter) (string, error) {
	prefix := fmt.Sprintf("%s-%s-", kind, now.Format("200601"))
	n, err := count(ctx, prefix)
	if err != nil {
		return "", dbError("failed to allocate "+kind+" number", err)
	}
	return fmt.Sprintf("%s%04d", prefix, n+1), nil
}

// formatAmount renders minor units as "1,234.50".
func formatAmount(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	whole := fmt.Sprintf("%d", cents/100)
	for i := len(whole) - 3; i > 0; i -= 3 {
		whole = whole[:i] + "," + whole[i:]
	}
	return fmt.Sprintf("%s%s.%02d", sign, whole, cents%100)
}
