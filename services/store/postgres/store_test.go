package postgres

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"ebaysync/services/store"
)

func TestUpdateSQL(t *testing.T) {
	sql := updateSQL()

	assert.True(t, strings.HasPrefix(sql, "UPDATE listings SET "))
	for i, column := range store.OutputColumns {
		assert.Contains(t, sql, fmt.Sprintf(`"%s" = $%d`, column, i+1))
	}

	// the aggregate is keyed by the trimmed link, so the update must match
	// the trimmed cell too
	assert.True(t, strings.HasSuffix(sql,
		fmt.Sprintf(`WHERE btrim("link") = $%d`, len(store.OutputColumns)+1)))
}
