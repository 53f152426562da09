package rg

import (
	"encoding/base64"
	"fmt"
)

const (
	jsonBegin   = `{"type":"begin","data":{"path":{"text":"src/model/item.rs"}}}`
	jsonMatch   = `{"type":"match","data":{"path":{"text":"src/model/item.rs"},"lines":{"text":"    Item::new(rg_msg)\n"},"line_number":197,"absolute_offset":5522,"submatches":[{"match":{"text":"Item"},"start":4,"end":8},{"match":{"text":"rg_msg"},"start":14,"end":20}]}}`
	jsonContext = `{"type":"context","data":{"path":{"text":"src/model/item.rs"},"lines":{"text":"  }\n"},"line_number":198,"absolute_offset":5544,"submatches":[]}}`
	jsonEnd     = `{"type":"end","data":{"path":{"text":"src/model/item.rs"},"binary_offset":null,"stats":{"elapsed":{"secs":0,"nanos":97924,"human":"0.000098s"},"searches":1,"searches_with_match":1,"bytes_searched":5956,"bytes_printed":674,"matched_lines":2,"matches":2}}}`
	jsonSummary = `{"type":"summary","data":{"elapsed_total":{"human":"0.013911s","nanos":13911098,"secs":0},"stats":{"bytes_printed":3248,"bytes_searched":18789,"elapsed":{"human":"0.000260s","nanos":260064,"secs":0},"matched_lines":10,"matches":11,"searches":2,"searches_with_match":2}}}`
)

var invalidPathBytes = []byte{0x66, 0x6f, 0x80, 0x6f}

func b64(b []byte) string {
	return base64.StdEncoding.EncodeToString(b)
}

func jsonBeginBase64() string {
	return fmt.Sprintf(`{"type":"begin","data":{"path":{"base64":%q}}}`, b64(invalidPathBytes))
}
