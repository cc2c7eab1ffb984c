package plan

// ToCNF rewrites a boolean expression into clauses whose conjunction is equivalent to expr. Each clause is an
// OrExpr of atoms or a single atom. The result shares no node with expr.
func ToCNF(expr Expr) []Expr {
	switch node := unwrapParen(expr).(type) {
	case *AndExpr:
		var ret []Expr
		for _, child := range node.Children {
			ret = append(ret, ToCNF(child)...)
		}
		return ret
	case *OrExpr:
		groups := [][]Expr{{}}
		for _, child := range node.Children {
			groups = product(groups, ToCNF(child))
		}
		ret := make([]Expr, 0, len(groups))
		for _, members := range groups {
			if len(members) == 1 {
				ret = append(ret, members[0])
				continue
			}
			ret = append(ret, NewOr(members...))
		}
		return ret
	case *NotExpr:
		switch inner := unwrapParen(node.Inner).(type) {
		case *NotExpr:
			return ToCNF(inner.Inner)
		case *OrExpr:
			return ToCNF(NewAnd(negateAll(inner.Children)...))
		case *AndExpr:
			return ToCNF(NewOr(negateAll(inner.Children)...))
		}
	}
	return []Expr{expr.Clone()}
}

// product extends every group with every clause, left to right. Or clauses are flattened into their members.
func product(groups [][]Expr, clauses []Expr) [][]Expr {
	ret := make([][]Expr, 0, len(groups)*len(clauses))
	for _, group := range groups {
		for _, clause := range clauses {
			members := make([]Expr, 0, len(group)+1)
			members = append(members, cloneAll(group)...)
			if or, ok := clause.(*OrExpr); ok {
				members = append(members, cloneAll(or.Children)...)
			} else {
				members = append(members, clause.Clone())
			}
			ret = append(ret, members)
		}
	}
	return ret
}

func negateAll(children []Expr) []Expr {
	ret := make([]Expr, len(children))
	for i, child := range children {
		ret[i] = NewNot(child.Clone())
	}
	return ret
}
