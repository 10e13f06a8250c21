package pagination

import "testing"

func TestPageRequestDefaults(t *testing.T) {
	t.Run("zero values", func(t *testing.T) {
		p := PageRequest{}
		p.Defaults()
		if p.Page != 1 || p.PageSize != DefaultPageSize {
			t.Errorf("unexpected defaults %+v", p)
		}
		if p.Offset() != 0 {
			t.Errorf("expected offset 0, got %d", p.Offset())
		}
	})

	t.Run("clamps page size", func(t *testing.T) {
		p := PageRequest{Page: 3, PageSize: 500}
		p.Defaults()
		if p.PageSize != MaxPageSize {
			t.Errorf("expected %d, got %d", MaxPageSize, p.PageSize)
		}
		if p.Offset() != 200 {
			t.Errorf("expected offset 200, got %d", p.Offset())
		}
	})
}

func TestNewPageResponse(t *testing.T) {
	resp := NewPageResponse[string](nil, 1, 20, 41)
	if resp.Data == nil {
		t.Error("expected empty slice, got nil")
	}
	if resp.TotalPages != 3 {
		t.Errorf("expected 3 pages, got %d", resp.TotalPages)
	}
	if !resp.HasNext {
		t.Error("expected HasNext on first of three pages")
	}

	last := NewPageResponse([]string{"a"}, 3, 20, 41)
	if last.HasNext {
		t.Error("expected no next page on last page")
	}
}
