// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package model

import (
	"github.com/walteh/repgrep/pkg/rg"
)

// SubItem is the selection flag layered over one submatch.
type SubItem struct {
	SubMatch      rg.SubMatch
	ShouldReplace bool
}

// NewSubItem returns a SubItem selected for replacement.
func NewSubItem(sm rg.SubMatch) SubItem {
	return SubItem{SubMatch: sm, ShouldReplace: true}
}

// 📄 Item is one reviewable ripgrep message. Only the SubItem flags ever change;
// the wrapped message is never mutated.
type Item struct {
	Kind rg.Kind

	message  rg.Message
	subItems []SubItem
}

// NewItem wraps a message. Match messages get one selected SubItem per submatch.
func NewItem(msg rg.Message) *Item {
	item := &Item{Kind: msg.Kind(), message: msg}

	switch m := msg.(type) {
	case rg.Match:
		item.subItems = make([]SubItem, 0, len(m.SubMatches))
		for _, sm := range m.SubMatches {
			item.subItems = append(item.subItems, NewSubItem(sm))
		}
	case rg.Begin, rg.Context, rg.End, rg.Summary:
	}

	return item
}

// NewItems wraps every message, keeping input order.
func NewItems(msgs []rg.Message) []*Item {
	items := make([]*Item, 0, len(msgs))
	for _, msg := range msgs {
		items = append(items, NewItem(msg))
	}
	return items
}

// Message returns the wrapped message.
func (it *Item) Message() rg.Message {
	return it.message
}

// IsSelectable reports whether the cursor may stop on this item.
func (it *Item) IsSelectable() bool {
	return it.Kind == rg.KindBegin || it.Kind == rg.KindMatch
}

// SubItems returns a copy of the selection state.
func (it *Item) SubItems() []SubItem {
	out := make([]SubItem, len(it.subItems))
	copy(out, it.subItems)
	return out
}

// Len returns the number of submatches.
func (it *Item) Len() int {
	return len(it.subItems)
}

// ShouldReplace reports the flag of submatch idx.
func (it *Item) ShouldReplace(idx int) bool {
	return it.subItems[idx].ShouldReplace
}

// SetShouldReplace sets the flag of submatch idx.
func (it *Item) SetShouldReplace(idx int, v bool) {
	it.subItems[idx].ShouldReplace = v
}

// Toggle flips the flag of submatch idx.
func (it *Item) Toggle(idx int) {
	it.subItems[idx].ShouldReplace = !it.subItems[idx].ShouldReplace
}

// ToggleAll sets every flag to v.
func (it *Item) ToggleAll(v bool) {
	for i := range it.subItems {
		it.subItems[i].ShouldReplace = v
	}
}

// AllSelected reports whether every flag is set. Items without submatches report true.
func (it *Item) AllSelected() bool {
	for _, s := range it.subItems {
		if !s.ShouldReplace {
			return false
		}
	}
	return true
}

// ReplaceCount counts the selected submatches.
func (it *Item) ReplaceCount() int {
	n := 0
	for _, s := range it.subItems {
		if s.ShouldReplace {
			n++
		}
	}
	return n
}

// Path returns the file the message belongs to. Summary has none.
func (it *Item) Path() (rg.Data, bool) {
	switch m := it.message.(type) {
	case rg.Begin:
		return m.Path, true
	case rg.Match:
		return m.Path, true
	case rg.Context:
		return m.Path, true
	case rg.End:
		return m.Path, true
	case rg.Summary:
		return rg.Data{}, false
	}
	return rg.Data{}, false
}

// LineNumber returns the line number of Match and Context items when ripgrep sent one.
func (it *Item) LineNumber() (uint64, bool) {
	switch m := it.message.(type) {
	case rg.Match:
		if m.LineNumber != nil {
			return *m.LineNumber, true
		}
	case rg.Context:
		if m.LineNumber != nil {
			return *m.LineNumber, true
		}
	case rg.Begin, rg.End, rg.Summary:
	}
	return 0, false
}

// Offset returns the absolute offset of a Match or the binary offset of an End.
func (it *Item) Offset() (uint64, bool) {
	switch m := it.message.(type) {
	case rg.Match:
		return m.AbsoluteOffset, true
	case rg.End:
		if m.BinaryOffset != nil {
			return *m.BinaryOffset, true
		}
	case rg.Begin, rg.Context, rg.Summary:
	}
	return 0, false
}
