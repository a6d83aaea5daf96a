package notes_test

import (
	"errors"
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/caselog-dev/caselog/pkg/domain/types"
	"github.com/caselog-dev/caselog/pkg/notes"
)

func TestParseChecklist(t *testing.T) {
	t.Run("extracts items with state", func(t *testing.T) {
		source := []byte(`# Next steps

Some context paragraph.

- [x] merge the fix PR
- [ ] backport to release-1.2
- [ ] close the tracking issue
`)
		items := gt.R1(notes.ParseChecklist(source)).NoError(t)
		gt.A(t, items).Length(3)
		gt.V(t, items[0].Text).Equal("merge the fix PR")
		gt.True(t, items[0].Done)
		gt.V(t, items[1].Text).Equal("backport to release-1.2")
		gt.False(t, items[1].Done)
		gt.V(t, items[2].Text).Equal("close the tracking issue")
	})

	t.Run("collects items across sections", func(t *testing.T) {
		source := []byte(`## Today

- [ ] fix the CI flake

## Later

- [ ] write monitoring note
`)
		items := gt.R1(notes.ParseChecklist(source)).NoError(t)
		gt.A(t, items).Length(2)
		gt.V(t, items[1].Text).Equal("write monitoring note")
	})

	t.Run("ignores plain list items", func(t *testing.T) {
		source := []byte(`- just a bullet
- [ ] a real task
`)
		items := gt.R1(notes.ParseChecklist(source)).NoError(t)
		gt.A(t, items).Length(1)
		gt.V(t, items[0].Text).Equal("a real task")
	})

	t.Run("keeps inline formatting text", func(t *testing.T) {
		source := []byte("- [ ] update `config.yml` with **new** roots\n")
		items := gt.R1(notes.ParseChecklist(source)).NoError(t)
		gt.A(t, items).Length(1)
		gt.V(t, items[0].Text).Equal("update config.yml with new roots")
	})

	t.Run("document without tasks fails", func(t *testing.T) {
		_, err := notes.ParseChecklist([]byte("# Just prose\n\nNothing to do here.\n"))
		gt.Error(t, err)
		gt.True(t, errors.Is(err, types.ErrInvalidNote))
	})
}
