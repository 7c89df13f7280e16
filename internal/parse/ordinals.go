// Copyright Ansvar Systems AB, 2026. All rights reserved.

package parse

import "strings"

// Ordinal-word headings ("First", "ثانياً") appear in treaties and older
// decrees in place of numbered articles. English ordinals cover 1..30,
// matching the largest bare-ordinal documents seen on the portal; Arabic
// ordinals are matched after normalizeArabic folding.

var englishOrdinals = map[string]int{
	"first": 1, "second": 2, "third": 3, "fourth": 4, "fifth": 5,
	"sixth": 6, "seventh": 7, "eighth": 8, "ninth": 9, "tenth": 10,
	"eleventh": 11, "twelfth": 12, "thirteenth": 13, "fourteenth": 14,
	"fifteenth": 15, "sixteenth": 16, "seventeenth": 17, "eighteenth": 18,
	"nineteenth": 19, "twentieth": 20,
	"twenty-first": 21, "twenty-second": 22, "twenty-third": 23,
	"twenty-fourth": 24, "twenty-fifth": 25, "twenty-sixth": 26,
	"twenty-seventh": 27, "twenty-eighth": 28, "twenty-ninth": 29,
	"thirtieth": 30,
}

// arabicOrdinals is keyed by the normalizeArabic form, so "أولاً",
// "أولا", and "اولا" all resolve through the single entry "اولا".
var arabicOrdinals = map[string]int{
	"اولا": 1, "ثانيا": 2, "ثالثا": 3, "رابعا": 4, "خامسا": 5,
	"سادسا": 6, "سابعا": 7, "ثامنا": 8, "تاسعا": 9, "عاشرا": 10,
	"حادي عشر": 11, "الحادي عشر": 11,
	"ثاني عشر": 12, "الثاني عشر": 12,
	"ثالث عشر": 13, "الثالث عشر": 13,
	"رابع عشر": 14, "الرابع عشر": 14,
	"خامس عشر": 15, "الخامس عشر": 15,
	"سادس عشر": 16, "السادس عشر": 16,
	"سابع عشر": 17, "السابع عشر": 17,
	"ثامن عشر": 18, "الثامن عشر": 18,
	"تاسع عشر": 19, "التاسع عشر": 19,
	"عشرون": 20, "العشرون": 20,
}

// ordinalValue resolves a candidate ordinal word to its number, trying the
// English table on the lowercase form and the Arabic table on the folded
// form. Returns 0 when the word is not an ordinal.
func ordinalValue(word string) int {
	if n, ok := englishOrdinals[strings.ToLower(word)]; ok {
		return n
	}
	if n, ok := arabicOrdinals[normalizeArabic(word)]; ok {
		return n
	}
	return 0
}
