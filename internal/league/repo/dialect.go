package repo

import (
	"errors"
	"strconv"
	"strings"

	"github.com/lib/pq"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// dialect concentra o que muda entre Postgres e SQLite.
// As queries são escritas com '?' e reescritas para $n quando necessário.
type dialect struct {
	name       string
	numbered   bool
	lockUpdate string
	lockShare  string
	schema     []string
	isUnique   func(error) bool
}

func (d dialect) rebind(q string) string {
	if !d.numbered {
		return q
	}
	var b strings.Builder
	b.Grow(len(q) + 8)
	n := 0
	for i := 0; i < len(q); i++ {
		if q[i] == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteByte(q[i])
	}
	return b.String()
}

func (d dialect) lockClause(mode LockMode) string {
	switch mode {
	case LockExclusive:
		return d.lockUpdate
	case LockShared:
		return d.lockShare
	}
	return ""
}

// placeholders gera "?,?,?" para cláusulas IN
func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

var postgresDialect = dialect{
	name:       "postgres",
	numbered:   true,
	lockUpdate: " FOR UPDATE",
	lockShare:  " FOR SHARE",
	schema:     postgresSchema,
	isUnique: func(err error) bool {
		var pqErr *pq.Error
		return errors.As(err, &pqErr) && pqErr.Code == "23505"
	},
}

// No SQLite o pool tem uma única conexão: a transação inteira já é exclusiva.
var sqliteDialect = dialect{
	name:   "sqlite",
	schema: sqliteSchema,
	isUnique: func(err error) bool {
		var sqErr *sqlite.Error
		if !errors.As(err, &sqErr) {
			return false
		}
		code := sqErr.Code()
		return code == sqlite3.SQLITE_CONSTRAINT_UNIQUE ||
			(code&0xff == sqlite3.SQLITE_CONSTRAINT && strings.Contains(sqErr.Error(), "UNIQUE"))
	},
}
