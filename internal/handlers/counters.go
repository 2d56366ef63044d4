package handlers

import (
	"fmt"

	"gorm.io/gorm"
)

// floorExpr adds delta to a counter column in SQL, clamping at zero
func floorExpr(column string, delta int) interface{} {
	if delta >= 0 {
		return gorm.Expr(fmt.Sprintf("%s + ?", column), delta)
	}
	return gorm.Expr(fmt.Sprintf("CASE WHEN %s + ? < 0 THEN 0 ELSE %s + ? END", column, column), delta, delta)
}
