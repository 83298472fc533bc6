package ast

// ExprID indexes into a File's flat expression arena.
type ExprID int32

// NoExprID marks the absence of an expression.
const NoExprID ExprID = -1

// TypeID indexes into a File's flat type-syntax arena.
type TypeID int32

// NoTypeID marks the absence of a type annotation.
const NoTypeID TypeID = -1

// ItemID indexes into a File's top-level item list.
type ItemID int32
