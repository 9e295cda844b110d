package frontend

import "github.com/obi1kenobi/trustfall-go/schema"

// recurseCoercion decides whether @recurse on an edge from a vertex of
// sourceType, along edgeName to destinationType, is legal, and if so
// whether it requires an implicit coercion at every recursive step beyond
// depth 0.
//
// This re-derives trustfall_core's get_recurse_implicit_coercion case
// analysis (frontend/mod.rs): recursion only makes sense when the edge
// can be re-applied to vertices it has already reached, which requires the
// destination type to be compatible with re-entering the same edge.
func recurseCoercion(sch schema.Schema, sourceType, destinationType, edgeName string) (coerceTo *string, err Error) {
	if sourceType == destinationType {
		// Case 3: identical types, no coercion needed.
		return nil, nil
	}

	destIsSubtypeOfSource := sch.IsNamedTypeSubtype(destinationType, sourceType)
	sourceIsSubtypeOfDest := sch.IsNamedTypeSubtype(sourceType, destinationType)

	if !destIsSubtypeOfSource && !sourceIsSubtypeOfDest {
		// Case 1: unrelated types, recursion is nonsensical.
		return nil, RecursingNonRecursableEdge{
			Edge: edgeName, SourceType: sourceType, DestinationType: destinationType,
		}
	}

	if destIsSubtypeOfSource {
		// Case 2: destination is a strict subtype of source (strict because
		// the identical-type case was already handled above).
		return nil, RecursionToSubtype{
			Edge: edgeName, SourceType: sourceType, DestinationType: destinationType,
		}
	}

	// Case 4: source is a strict subtype of destination. Check whether the
	// destination type re-declares the edge.
	destinationEdge, hasDestinationEdge := sch.Field(destinationType, edgeName)
	if hasDestinationEdge {
		if destinationEdge.TargetType == destinationType {
			// Case 4a: destination's own edge definition points back to
			// itself — recursion works with no further coercion.
			return nil, nil
		}
		// Case 4b: destination's edge points elsewhere; making recursion
		// legal would need more than one implicit coercion.
		return nil, EdgeRecursionNeedingMultipleCoercions{Edge: edgeName}
	}

	origin, ok := sch.FieldOrigin(sourceType, edgeName)
	if !ok {
		return nil, EdgeRecursionNeedingMultipleCoercions{Edge: edgeName}
	}
	if origin.IsAmbiguous() {
		// Case 4d: the edge is inherited from two+ unrelated interfaces.
		return nil, AmbiguousOriginEdgeRecursion{Edge: edgeName}
	}

	// Case 4c: the edge has exactly one ancestor origin; see whether
	// coercing to that ancestor on every recursive step makes the edge
	// point back to destinationType.
	ancestor := origin.SingleAncestor
	ancestorEdge, ok := sch.Field(ancestor, edgeName)
	if !ok || ancestorEdge.TargetType != destinationType {
		return nil, EdgeRecursionNeedingMultipleCoercions{Edge: edgeName}
	}
	ancestorCopy := ancestor
	return &ancestorCopy, nil
}
