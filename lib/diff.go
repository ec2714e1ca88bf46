package lib

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"strings"
)

// Patch verbs accepted by the processor's update-order endpoint.
const (
	OpReplace = "replace"
	OpAdd     = "add"
	OpRemove  = "remove"
)

// PatchOp is one {op, path, value} instruction of a PATCH body.
type PatchOp struct {
	Op    string      `json:"op"`
	Path  string      `json:"path"`
	Value interface{} `json:"value,omitempty"`
}

// A created order has exactly one purchase unit, addressed by reference id.
const patchPathPrefix = "/purchase_units/@reference_id=='default'"

// FieldPath addresses one mutable field inside the purchase unit.
type FieldPath []string

func (p FieldPath) String() string {
	return strings.Join(p, ".")
}

type fieldPolicy struct {
	path    FieldPath
	allowed []string
}

// updatePolicy is the processor's rulebook for mutating an already-created
// order: which purchase-unit fields may change and with which verbs. Kept as
// data so the permitted surface stays auditable in one place. Declaration
// order is the emission order of the patch operations.
var updatePolicy = []fieldPolicy{
	{FieldPath{"custom_id"}, []string{OpReplace, OpAdd, OpRemove}},
	{FieldPath{"description"}, []string{OpReplace, OpAdd, OpRemove}},
	{FieldPath{"shipping", "name"}, []string{OpReplace, OpAdd}},
	{FieldPath{"shipping", "address"}, []string{OpReplace, OpAdd}},
	{FieldPath{"shipping", "type"}, []string{OpReplace, OpAdd}},
	{FieldPath{"soft_descriptor"}, []string{OpReplace, OpRemove}},
	{FieldPath{"amount"}, []string{OpReplace}},
	{FieldPath{"items"}, []string{OpReplace, OpAdd, OpRemove}},
	{FieldPath{"invoice_id"}, []string{OpReplace, OpAdd, OpRemove}},
}

// DiffOrder computes the minimal permitted patch turning the previously
// created order into the desired one. Any difference outside the policy
// table, or a derived verb the table forbids for that field, rejects the
// whole diff and nothing is sent to the processor.
func DiffOrder(current, desired *OrderSnapshot) ([]PatchOp, error) {
	if current == nil || len(current.PurchaseUnits) == 0 {
		return nil, diffRejected("current order has no purchase unit")
	}
	if desired == nil || len(desired.PurchaseUnits) == 0 {
		return nil, diffRejected("desired order has no purchase unit")
	}

	currentMap, err := purchaseUnitMap(&current.PurchaseUnits[0])
	if err != nil {
		return nil, err
	}
	desiredMap, err := purchaseUnitMap(&desired.PurchaseUnits[0])
	if err != nil {
		return nil, err
	}

	return diffUnitTrees(currentMap, desiredMap)
}

// diffUnitTrees resolves the raw tree difference against the update policy.
// Every difference must be claimed by a policy entry; leftovers reject the
// diff as parameters the processor will not update.
func diffUnitTrees(currentMap, desiredMap map[string]interface{}) ([]PatchOp, error) {
	residue := structuralDiff(currentMap, desiredMap)

	var ops []PatchOp
	for _, policy := range updatePolicy {
		currentValue, inCurrent := valueAt(currentMap, policy.path)
		desiredValue, inDesired := valueAt(desiredMap, policy.path)

		var verb string
		switch {
		case inCurrent && inDesired:
			if reflect.DeepEqual(currentValue, desiredValue) {
				continue
			}
			verb = OpReplace
		case !inCurrent && inDesired:
			verb = OpAdd
		case inCurrent && !inDesired:
			verb = OpRemove
		default:
			continue
		}

		removeAt(residue, policy.path)

		if !verbAllowed(policy.allowed, verb) {
			return nil, diffRejected(fmt.Sprintf("operation %q is not permitted on field %q", verb, policy.path))
		}

		op := PatchOp{
			Op:   verb,
			Path: patchPathPrefix + "/" + strings.Join(policy.path, "/"),
		}
		if verb != OpRemove {
			op.Value = desiredValue
		}
		ops = append(ops, op)
	}

	if len(residue) > 0 {
		fields := flattenPaths(residue, nil)
		sort.Strings(fields)
		return nil, diffRejected(fmt.Sprintf("parameters cannot be updated: %s", strings.Join(fields, ", ")))
	}

	return ops, nil
}

func diffRejected(message string) error {
	info := ErrorInfo{
		Name:    ErrNameDiffNotAllowed,
		Message: message,
	}
	return newAPIError(info, ErrDiffNotAllowed)
}

func verbAllowed(allowed []string, verb string) bool {
	for _, a := range allowed {
		if a == verb {
			return true
		}
	}
	return false
}

// purchaseUnitMap renders the purchase unit as a generic tree for key-by-key
// comparison. Processor-assigned members sit outside the update policy and
// are stripped before diffing.
func purchaseUnitMap(pu *PurchaseUnit) (map[string]interface{}, error) {
	raw, err := json.Marshal(pu)
	if err != nil {
		return nil, fmt.Errorf("failed to encode purchase unit: %w", err)
	}

	var tree map[string]interface{}
	if err := json.Unmarshal(raw, &tree); err != nil {
		return nil, fmt.Errorf("failed to decode purchase unit: %w", err)
	}

	delete(tree, "payments")
	delete(tree, "reference_id")
	return tree, nil
}

// structuralDiff returns the keys on which the two trees disagree. Nested
// objects produce nested maps; any other difference is a leaf marker. A key
// missing on one side diffs its object value against the empty tree so the
// per-field policy resolution can still account for its members.
func structuralDiff(current, desired map[string]interface{}) map[string]interface{} {
	diff := map[string]interface{}{}

	for key := range current {
		currentValue := current[key]
		desiredValue, inDesired := desired[key]
		if !inDesired {
			diff[key] = expandMissing(currentValue)
			continue
		}

		currentTree, currentIsMap := currentValue.(map[string]interface{})
		desiredTree, desiredIsMap := desiredValue.(map[string]interface{})
		if currentIsMap && desiredIsMap {
			if sub := structuralDiff(currentTree, desiredTree); len(sub) > 0 {
				diff[key] = sub
			}
			continue
		}

		if !reflect.DeepEqual(currentValue, desiredValue) {
			diff[key] = true
		}
	}

	for key := range desired {
		if _, inCurrent := current[key]; !inCurrent {
			diff[key] = expandMissing(desired[key])
		}
	}

	return diff
}

func expandMissing(value interface{}) interface{} {
	tree, isMap := value.(map[string]interface{})
	if !isMap {
		return true
	}

	expanded := map[string]interface{}{}
	for key, member := range tree {
		expanded[key] = expandMissing(member)
	}
	if len(expanded) == 0 {
		return true
	}
	return expanded
}

func valueAt(tree map[string]interface{}, path FieldPath) (interface{}, bool) {
	var value interface{} = tree
	for _, segment := range path {
		node, isMap := value.(map[string]interface{})
		if !isMap {
			return nil, false
		}
		member, present := node[segment]
		if !present {
			return nil, false
		}
		value = member
	}
	return value, true
}

// removeAt prunes an accounted-for field from the raw difference, dropping
// parents that become empty.
func removeAt(diff map[string]interface{}, path FieldPath) {
	if len(path) == 0 {
		return
	}

	if len(path) == 1 {
		delete(diff, path[0])
		return
	}

	sub, isMap := diff[path[0]].(map[string]interface{})
	if !isMap {
		return
	}

	removeAt(sub, path[1:])
	if len(sub) == 0 {
		delete(diff, path[0])
	}
}

func flattenPaths(diff map[string]interface{}, prefix []string) []string {
	var out []string
	for key, value := range diff {
		path := append(append([]string{}, prefix...), key)
		if sub, isMap := value.(map[string]interface{}); isMap {
			out = append(out, flattenPaths(sub, path)...)
			continue
		}
		out = append(out, strings.Join(path, "."))
	}
	return out
}
