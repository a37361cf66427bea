package services

import (
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"budgetcraft/apperrors"
	"budgetcraft/models"
)

// Direction moves a node one slot among its siblings.
type Direction string

const (
	MoveUp   Direction = "up"
	MoveDown Direction = "down"
)

func (d Direction) Valid() bool { return d == MoveUp || d == MoveDown }

// Tree mutations never modify their argument. Each returns an updated clone
// that becomes durable only once saved.

func AddPackage(b models.Budget, name string) (models.Budget, models.Package, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return b, models.Package{}, apperrors.WithMessage(apperrors.ErrValidation, "package name is required")
	}
	out := b.Clone()
	p := models.Package{ID: uuid.NewString(), Name: name, Order: len(out.Packages), Subgroups: []models.Subgroup{}}
	out.Packages = append(out.Packages, p)
	return out, p, nil
}

func RenamePackage(b models.Budget, packageID, name string) (models.Budget, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return b, apperrors.WithMessage(apperrors.ErrValidation, "package name is required")
	}
	idx := b.PackageIndex(packageID)
	if idx < 0 {
		return b, apperrors.ErrPackageNotFound
	}
	out := b.Clone()
	out.Packages[idx].Name = name
	return out, nil
}

// DeletePackage removes the package, its subgroups and every instance tagged
// with it.
func DeletePackage(b models.Budget, packageID string) (models.Budget, error) {
	idx := b.PackageIndex(packageID)
	if idx < 0 {
		return b, apperrors.ErrPackageNotFound
	}
	out := b.Clone()
	out.Packages = append(out.Packages[:idx], out.Packages[idx+1:]...)
	renumberPackages(out.Packages)
	out.Instances = filterInstances(out.Instances, func(inst models.CompositionInstance) bool {
		return inst.PackageID != packageID
	})
	return out, nil
}

// MovePackage swaps the package with its neighbour. Moving past either end is
// a no-op.
func MovePackage(b models.Budget, packageID string, dir Direction) (models.Budget, error) {
	idx := b.PackageIndex(packageID)
	if idx < 0 {
		return b, apperrors.ErrPackageNotFound
	}
	target, ok := neighbour(idx, len(b.Packages), dir)
	if !ok {
		return b.Clone(), nil
	}
	out := b.Clone()
	out.Packages[idx], out.Packages[target] = out.Packages[target], out.Packages[idx]
	renumberPackages(out.Packages)
	return out, nil
}

func AddSubgroup(b models.Budget, packageID, name string) (models.Budget, models.Subgroup, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return b, models.Subgroup{}, apperrors.WithMessage(apperrors.ErrValidation, "subgroup name is required")
	}
	idx := b.PackageIndex(packageID)
	if idx < 0 {
		return b, models.Subgroup{}, apperrors.ErrPackageNotFound
	}
	out := b.Clone()
	sg := models.Subgroup{ID: uuid.NewString(), Name: name, Order: len(out.Packages[idx].Subgroups)}
	out.Packages[idx].Subgroups = append(out.Packages[idx].Subgroups, sg)
	return out, sg, nil
}

func RenameSubgroup(b models.Budget, packageID, subgroupID, name string) (models.Budget, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return b, apperrors.WithMessage(apperrors.ErrValidation, "subgroup name is required")
	}
	pi, si, err := locateSubgroup(b, packageID, subgroupID)
	if err != nil {
		return b, err
	}
	out := b.Clone()
	out.Packages[pi].Subgroups[si].Name = name
	return out, nil
}

// DeleteSubgroup removes the subgroup and every instance tagged with it.
func DeleteSubgroup(b models.Budget, packageID, subgroupID string) (models.Budget, error) {
	pi, si, err := locateSubgroup(b, packageID, subgroupID)
	if err != nil {
		return b, err
	}
	out := b.Clone()
	sgs := out.Packages[pi].Subgroups
	out.Packages[pi].Subgroups = append(sgs[:si], sgs[si+1:]...)
	renumberSubgroups(out.Packages[pi].Subgroups)
	out.Instances = filterInstances(out.Instances, func(inst models.CompositionInstance) bool {
		return !(inst.PackageID == packageID && inst.SubgroupID == subgroupID)
	})
	return out, nil
}

func MoveSubgroup(b models.Budget, packageID, subgroupID string, dir Direction) (models.Budget, error) {
	pi, si, err := locateSubgroup(b, packageID, subgroupID)
	if err != nil {
		return b, err
	}
	target, ok := neighbour(si, len(b.Packages[pi].Subgroups), dir)
	if !ok {
		return b.Clone(), nil
	}
	out := b.Clone()
	sgs := out.Packages[pi].Subgroups
	sgs[si], sgs[target] = sgs[target], sgs[si]
	renumberSubgroups(sgs)
	return out, nil
}

// BindRequest places a composition into a subgroup. UnitCost overrides the
// composition's current cost when set.
type BindRequest struct {
	PackageID   string
	SubgroupID  string
	Composition models.Composition
	Quantity    float64
	UnitCost    *float64
}

// BindComposition freezes the composition's current cost and item list into
// a new instance. Later price changes do not reach the instance.
func BindComposition(b models.Budget, req BindRequest, inputs []models.Input) (models.Budget, models.CompositionInstance, []Warning, error) {
	if req.Quantity <= 0 {
		return b, models.CompositionInstance{}, nil, apperrors.WithMessage(apperrors.ErrValidation, "quantity must be greater than zero")
	}
	if req.UnitCost != nil && *req.UnitCost < 0 {
		return b, models.CompositionInstance{}, nil, apperrors.WithMessage(apperrors.ErrValidation, "unit cost must not be negative")
	}
	if _, _, err := locateSubgroup(b, req.PackageID, req.SubgroupID); err != nil {
		return b, models.CompositionInstance{}, nil, err
	}

	unitCost, warns := CompositionValue(req.Composition, IndexInputs(inputs))
	if req.UnitCost != nil {
		unitCost = *req.UnitCost
	}

	out := b.Clone()
	inst := models.CompositionInstance{
		ID:            uuid.NewString(),
		CompositionID: req.Composition.ID,
		PackageID:     req.PackageID,
		SubgroupID:    req.SubgroupID,
		Name:          req.Composition.Name,
		Unit:          req.Composition.Unit,
		Quantity:      req.Quantity,
		UnitCost:      unitCost,
		TotalCost:     req.Quantity * unitCost,
		Items:         append([]models.CompositionItem(nil), req.Composition.Items...),
		Order:         len(SubgroupInstances(out, req.PackageID, req.SubgroupID)),
		BoundAt:       time.Now().UTC(),
	}
	out.Instances = append(out.Instances, inst)
	return out, inst, warns, nil
}

func UpdateInstanceQuantity(b models.Budget, instanceID string, quantity float64) (models.Budget, error) {
	if quantity <= 0 {
		return b, apperrors.WithMessage(apperrors.ErrValidation, "quantity must be greater than zero")
	}
	idx := instanceIndex(b, instanceID)
	if idx < 0 {
		return b, apperrors.ErrInstanceNotFound
	}
	out := b.Clone()
	inst := &out.Instances[idx]
	inst.Quantity = quantity
	inst.TotalCost = quantity * inst.UnitCost
	return out, nil
}

// ResyncInstance re-freezes an instance from the composition's current items
// and prices, keeping its quantity and position.
func ResyncInstance(b models.Budget, instanceID string, c models.Composition, inputs []models.Input) (models.Budget, []Warning, error) {
	idx := instanceIndex(b, instanceID)
	if idx < 0 {
		return b, nil, apperrors.ErrInstanceNotFound
	}
	unitCost, warns := CompositionValue(c, IndexInputs(inputs))
	out := b.Clone()
	inst := &out.Instances[idx]
	inst.CompositionID = c.ID
	inst.Name = c.Name
	inst.Unit = c.Unit
	inst.Items = append([]models.CompositionItem(nil), c.Items...)
	inst.UnitCost = unitCost
	inst.TotalCost = inst.Quantity * unitCost
	inst.BoundAt = time.Now().UTC()
	return out, warns, nil
}

func MoveInstance(b models.Budget, instanceID string, dir Direction) (models.Budget, error) {
	idx := instanceIndex(b, instanceID)
	if idx < 0 {
		return b, apperrors.ErrInstanceNotFound
	}
	out := b.Clone()
	inst := out.Instances[idx]
	siblings := SubgroupInstances(out, inst.PackageID, inst.SubgroupID)
	pos := -1
	for i, s := range siblings {
		if s.ID == instanceID {
			pos = i
		}
	}
	target, ok := neighbour(pos, len(siblings), dir)
	if !ok {
		return out, nil
	}
	siblings[pos], siblings[target] = siblings[target], siblings[pos]
	order := make(map[string]int, len(siblings))
	for i, s := range siblings {
		order[s.ID] = i
	}
	for i := range out.Instances {
		if o, ok := order[out.Instances[i].ID]; ok {
			out.Instances[i].Order = o
		}
	}
	return out, nil
}

func DeleteInstance(b models.Budget, instanceID string) (models.Budget, error) {
	idx := instanceIndex(b, instanceID)
	if idx < 0 {
		return b, apperrors.ErrInstanceNotFound
	}
	out := b.Clone()
	removed := out.Instances[idx]
	out.Instances = append(out.Instances[:idx], out.Instances[idx+1:]...)
	for i, s := range SubgroupInstances(out, removed.PackageID, removed.SubgroupID) {
		for j := range out.Instances {
			if out.Instances[j].ID == s.ID {
				out.Instances[j].Order = i
			}
		}
	}
	return out, nil
}

// PrepareForSave refreshes the cached base total and the tree timestamp.
func PrepareForSave(b models.Budget) models.Budget {
	out := b.Clone()
	out.TotalValue = NewAggregator(out, nil).BudgetTotal()
	out.TreeUpdatedAt = time.Now().UTC()
	return out
}

// SubgroupInstances returns the instances of one subgroup in display order.
func SubgroupInstances(b models.Budget, packageID, subgroupID string) []models.CompositionInstance {
	var out []models.CompositionInstance
	for _, inst := range b.Instances {
		if inst.PackageID == packageID && inst.SubgroupID == subgroupID {
			out = append(out, inst)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out
}

func locateSubgroup(b models.Budget, packageID, subgroupID string) (int, int, error) {
	pi := b.PackageIndex(packageID)
	if pi < 0 {
		return -1, -1, apperrors.ErrPackageNotFound
	}
	for si, sg := range b.Packages[pi].Subgroups {
		if sg.ID == subgroupID {
			return pi, si, nil
		}
	}
	return pi, -1, apperrors.ErrSubgroupNotFound
}

func instanceIndex(b models.Budget, instanceID string) int {
	for i, inst := range b.Instances {
		if inst.ID == instanceID {
			return i
		}
	}
	return -1
}

func neighbour(idx, n int, dir Direction) (int, bool) {
	target := idx - 1
	if dir == MoveDown {
		target = idx + 1
	}
	if idx < 0 || target < 0 || target >= n {
		return -1, false
	}
	return target, true
}

func filterInstances(in []models.CompositionInstance, keep func(models.CompositionInstance) bool) []models.CompositionInstance {
	out := make([]models.CompositionInstance, 0, len(in))
	for _, inst := range in {
		if keep(inst) {
			out = append(out, inst)
		}
	}
	return out
}

func renumberPackages(ps []models.Package) {
	for i := range ps {
		ps[i].Order = i
	}
}

func renumberSubgroups(sgs []models.Subgroup) {
	for i := range sgs {
		sgs[i].Order = i
	}
}
