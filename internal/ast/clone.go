package ast

// CloneBlock deep-copies a function body so each monomorphized
// specialization gets its own node identities: every Expr node carries its
// resolved type on the node itself (exprBase.resolved), so two
// specializations sharing one Block would stomp each other's types the
// moment their argument types differ (spec §4.G).
func CloneBlock(b *Block) *Block {
	if b == nil {
		return nil
	}
	out := &Block{Pos: b.Pos, Stmts: make([]Stmt, len(b.Stmts))}
	for i, s := range b.Stmts {
		out.Stmts[i] = cloneStmt(s)
	}
	return out
}

func cloneStmt(s Stmt) Stmt {
	switch n := s.(type) {
	case nil:
		return nil
	case *ConstDecl:
		return &ConstDecl{Name: n.Name, TypeHint: n.TypeHint, ArraySizeExp: cloneExpr(n.ArraySizeExp), Value: cloneExpr(n.Value), Pos: n.Pos}
	case *VarDecl:
		return &VarDecl{Name: n.Name, TypeHint: n.TypeHint, ArraySizeExp: cloneExpr(n.ArraySizeExp), Value: cloneExpr(n.Value), Pos: n.Pos}
	case *Block:
		return CloneBlock(n)
	case *ExprStmt:
		return &ExprStmt{X: cloneExpr(n.X), Pos: n.Pos}
	case *Assign:
		return &Assign{Target: cloneExpr(n.Target), Op: n.Op, Value: cloneExpr(n.Value), Pos: n.Pos}
	case *If:
		return &If{Cond: cloneExpr(n.Cond), Then: CloneBlock(n.Then), Else: cloneStmt(n.Else), Pos: n.Pos}
	case *While:
		return &While{Cond: cloneExpr(n.Cond), Body: CloneBlock(n.Body), Pos: n.Pos}
	case *For:
		return &For{Init: cloneStmt(n.Init), Cond: cloneExpr(n.Cond), Update: cloneStmt(n.Update), Body: CloneBlock(n.Body), Pos: n.Pos}
	case *Break:
		return &Break{Pos: n.Pos}
	case *Continue:
		return &Continue{Pos: n.Pos}
	case *Return:
		return &Return{Value: cloneExpr(n.Value), Pos: n.Pos}
	case *DeleteStmt:
		return &DeleteStmt{Target: cloneExpr(n.Target), Pos: n.Pos}
	default:
		return s
	}
}

func cloneExpr(e Expr) Expr {
	switch n := e.(type) {
	case nil:
		return nil
	case *Identifier:
		return &Identifier{Name: n.Name, Pos: n.Pos}
	case *IntLiteral:
		return &IntLiteral{Value: n.Value, Pos: n.Pos}
	case *FloatLiteral:
		return &FloatLiteral{Value: n.Value, Pos: n.Pos}
	case *StringLiteral:
		return &StringLiteral{Value: n.Value, Pos: n.Pos}
	case *BoolLiteral:
		return &BoolLiteral{Value: n.Value, Pos: n.Pos}
	case *BinaryExpr:
		return &BinaryExpr{Op: n.Op, Left: cloneExpr(n.Left), Right: cloneExpr(n.Right), Pos: n.Pos}
	case *UnaryExpr:
		return &UnaryExpr{Op: n.Op, Operand: cloneExpr(n.Operand), Pos: n.Pos}
	case *CallExpr:
		args := make([]Expr, len(n.Args))
		for i, a := range n.Args {
			args[i] = cloneExpr(a)
		}
		return &CallExpr{Callee: cloneExpr(n.Callee), Args: args, Pos: n.Pos}
	case *MemberExpr:
		return &MemberExpr{Target: cloneExpr(n.Target), Name: n.Name, Pos: n.Pos, FieldIndex: -1}
	case *IndexExpr:
		return &IndexExpr{Target: cloneExpr(n.Target), Index: cloneExpr(n.Index), Pos: n.Pos}
	case *NewArrayExpr:
		return &NewArrayExpr{ElemHint: n.ElemHint, Size: cloneExpr(n.Size), Pos: n.Pos}
	case *ObjectLiteral:
		fields := make([]*ObjectFieldInit, len(n.Fields))
		for i, f := range n.Fields {
			fields[i] = &ObjectFieldInit{Name: f.Name, Value: cloneExpr(f.Value), Pos: f.Pos}
		}
		return &ObjectLiteral{StructHint: n.StructHint, Fields: fields, Pos: n.Pos}
	case *EnumConstructExpr:
		fields := make([]*ObjectFieldInit, len(n.Fields))
		for i, f := range n.Fields {
			fields[i] = &ObjectFieldInit{Name: f.Name, Value: cloneExpr(f.Value), Pos: f.Pos}
		}
		return &EnumConstructExpr{EnumName: n.EnumName, Variant: n.Variant, Fields: fields, Pos: n.Pos}
	case *IsExpr:
		bindings := make([]*PatternBinding, len(n.Bindings))
		for i, b := range n.Bindings {
			bindings[i] = &PatternBinding{Name: b.Name, IsWildcard: b.IsWildcard, Pos: b.Pos}
		}
		return &IsExpr{Target: cloneExpr(n.Target), EnumName: n.EnumName, Variant: n.Variant, Bindings: bindings, Pos: n.Pos, WholeVariantBind: n.WholeVariantBind}
	case *IncDec:
		return &IncDec{Target: cloneExpr(n.Target), Op: n.Op, Postfix: n.Postfix, Pos: n.Pos}
	default:
		return e
	}
}
