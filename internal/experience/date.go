package experience

import (
	"strconv"
	"strings"
	"unicode"
)

// Pivot splits two-digit years: below it they are 20xx, otherwise 19xx.
const Pivot = 50

var months = map[string]int{
	"jan": 1, "january": 1,
	"feb": 2, "february": 2,
	"mar": 3, "march": 3,
	"apr": 4, "april": 4,
	"may": 5,
	"jun": 6, "june": 6,
	"jul": 7, "july": 7,
	"aug": 8, "august": 8,
	"sep": 9, "sept": 9, "september": 9,
	"oct": 10, "october": 10,
	"nov": 11, "november": 11,
	"dec": 12, "december": 12,
}

// ParseDateKey turns loosely written date text into year*100+month.
//
// "2023/05", "2023-05", "2023.5", "May 2023", "05/2023" and "2023年5月" all
// give 202305. A four-digit number is taken as the year, otherwise the first
// number is, with two-digit years pivoting at Pivot. A missing month counts
// as December. Text without a usable year gives 0.
func ParseDateKey(text string) int {
	var nums []string
	month := 0

	for _, tok := range tokenize(text) {
		if unicode.IsDigit(rune(tok[0])) {
			nums = append(nums, tok)
			continue
		}
		if m, ok := months[tok]; ok && month == 0 {
			month = m
		}
	}

	year, yearIdx := 0, -1
	for i, n := range nums {
		if len(n) == 4 {
			year, _ = strconv.Atoi(n)
			yearIdx = i
			break
		}
	}
	if yearIdx < 0 && len(nums) > 0 && len(nums[0]) <= 2 {
		y, _ := strconv.Atoi(nums[0])
		year = pivot(y)
		yearIdx = 0
	}
	if year <= 0 {
		return 0
	}

	if month == 0 {
		for i, n := range nums {
			if i == yearIdx {
				continue
			}
			m, err := strconv.Atoi(n)
			if err != nil {
				continue
			}
			month = clamp(m)
			break
		}
	}
	if month == 0 {
		month = 12
	}

	return year*100 + month
}

func pivot(y int) int {
	if y < Pivot {
		return 2000 + y
	}
	return 1900 + y
}

func clamp(m int) int {
	if m < 1 {
		return 1
	}
	if m > 12 {
		return 12
	}
	return m
}

// tokenize splits text into runs of digits and runs of lowercase letters.
// Everything else, including CJK year and month markers, separates tokens.
func tokenize(text string) []string {
	var (
		out []string
		cur strings.Builder
		// 0 none, 1 digits, 2 letters
		kind int
	)
	flush := func() {
		if cur.Len() > 0 {
			out = append(out, cur.String())
			cur.Reset()
		}
		kind = 0
	}

	for _, r := range strings.ToLower(text) {
		switch {
		case r >= '0' && r <= '9':
			if kind != 1 {
				flush()
				kind = 1
			}
			cur.WriteRune(r)
		case r >= 'a' && r <= 'z':
			if kind != 2 {
				flush()
				kind = 2
			}
			cur.WriteRune(r)
		default:
			flush()
		}
	}
	flush()

	return out
}
