package inventory

import (
	"strings"

	"github.com/hitoshi/easystock/internal/model"
)

// defaultPageSize はpageのみ指定された場合の1ページあたりの件数。
const defaultPageSize = 5

// maxParsedInt はクエリ文字列から読み取る整数の上限。
// skip=page×sizeの乗算がint64を溢れないように頭打ちにする。
const maxParsedInt = 1_000_000_000

// ParsePage はクエリパラメータのpageとsizeからページ指定を組み立てる。
//
// pageとsizeは先頭の整数部分のみを読み取る（"2abc" は 2、"abc" は未指定扱い）。
// どちらも0または未指定の場合はページングしない。
// sizeが0または未指定でpageが指定された場合、sizeは5とする。
// 負の値はエラーとする。
func ParsePage(pageParam, sizeParam string) (model.Page, error) {
	page, _ := parseLeadingInt(pageParam)
	size, _ := parseLeadingInt(sizeParam)

	if page < 0 {
		return model.Page{}, model.NewInvalidPaginationError("page")
	}
	if size < 0 {
		return model.Page{}, model.NewInvalidPaginationError("size")
	}
	if page == 0 && size == 0 {
		return model.Page{}, nil
	}
	if size == 0 {
		size = defaultPageSize
	}

	return model.Page{Skip: page * size, Limit: size}, nil
}

// parseLeadingInt は文字列先頭の空白を除いた後、符号付き10進整数の接頭辞を読み取る。
// 数字が1つもない場合はfalseを返す。
func parseLeadingInt(s string) (int64, bool) {
	s = strings.TrimLeft(s, " \t\n\r\v\f")

	i := 0
	negative := false
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		negative = s[i] == '-'
		i++
	}

	start := i
	var n int64
	for ; i < len(s) && s[i] >= '0' && s[i] <= '9'; i++ {
		if n < maxParsedInt {
			n = n*10 + int64(s[i]-'0')
		}
	}
	if i == start {
		return 0, false
	}

	if n > maxParsedInt {
		n = maxParsedInt
	}
	if negative {
		n = -n
	}
	return n, true
}
