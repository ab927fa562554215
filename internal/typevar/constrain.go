package typevar

// ConstrainTypes narrows the types tv can assume to those other can also
// assume. SameAs links are stripped from both sides first, so constraining a
// SameAs variable constrains its base.
//
// When both sides are free after stripping, the receiver's slot is replaced
// with the intersection of the two sets, and the receiver adopts other's
// singleton type if it has none of its own. other is never modified.
//
// Constraints are not propagated through derived variables: if either side
// is still derived after stripping, nothing changes and an
// ErrCodePropagationUnsupported error is returned. If the intersection admits
// no concrete type, nothing changes and an ErrCodeEmptyTypeSet error is
// returned.
func (tv TypeVar) ConstrainTypes(other TypeVar) error {
	if tv.env != other.env {
		return &Error{Code: ErrCodeForeignEnv, Message: "variables belong to different environments"}
	}

	a := tv.StripSameAs()
	b := other.StripSameAs()
	if a == b {
		return nil
	}

	an, bn := a.node(), b.node()
	if an.derived || bn.derived {
		// Constraining two variables derived with the same injective function
		// could constrain their bases; the general case needs the pre-image of
		// the function over the other side's image set.
		return &Error{
			Code:    ErrCodePropagationUnsupported,
			Message: "constraints on derived type variables are not propagated",
			Var:     an.name,
			Other:   bn.name,
		}
	}

	narrowed := an.set.Intersect(bn.set)
	if narrowed.IsEmpty() {
		return &Error{
			Code:    ErrCodeEmptyTypeSet,
			Message: "intersection of " + an.set.String() + " and " + bn.set.String() + " admits no type",
			Var:     an.name,
			Other:   bn.name,
		}
	}

	before := an.set
	an.set = narrowed
	if an.singleton == nil {
		an.singleton = bn.singleton
	}
	tv.env.nodes[a.id] = an

	tv.env.logger.Debug("type variable narrowed",
		"var", an.name,
		"other", bn.name,
		"from", before.String(),
		"to", narrowed.String())
	return nil
}
