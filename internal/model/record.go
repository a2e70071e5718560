package model

import "time"

func (u *User) RecordID() string   { return u.ID }
func (u *User) Created() time.Time { return u.CreatedAt }
func (u *User) Stamp(id string, createdAt, _ time.Time) {
	u.ID, u.CreatedAt = id, createdAt
}

func (h *Household) RecordID() string   { return h.ID }
func (h *Household) Created() time.Time { return h.CreatedAt }
func (h *Household) Stamp(id string, createdAt, now time.Time) {
	h.ID, h.CreatedAt, h.UpdatedAt = id, createdAt, now
}

func (p *Person) RecordID() string   { return p.ID }
func (p *Person) Created() time.Time { return p.CreatedAt }
func (p *Person) Stamp(id string, createdAt, _ time.Time) {
	p.ID, p.CreatedAt = id, createdAt
}

func (c *GasCylinder) RecordID() string   { return c.ID }
func (c *GasCylinder) Created() time.Time { return c.CreatedAt }
func (c *GasCylinder) Stamp(id string, createdAt, now time.Time) {
	c.ID, c.CreatedAt, c.UpdatedAt = id, createdAt, now
}

func (a *CylinderAssignment) RecordID() string   { return a.ID }
func (a *CylinderAssignment) Created() time.Time { return a.CreatedAt }
func (a *CylinderAssignment) Stamp(id string, createdAt, _ time.Time) {
	a.ID, a.CreatedAt = id, createdAt
}

func (b *Bag) RecordID() string   { return b.ID }
func (b *Bag) Created() time.Time { return b.CreatedAt }
func (b *Bag) Stamp(id string, createdAt, _ time.Time) {
	b.ID, b.CreatedAt = id, createdAt
}

func (d *BagDistribution) RecordID() string   { return d.ID }
func (d *BagDistribution) Created() time.Time { return d.CreatedAt }
func (d *BagDistribution) Stamp(id string, createdAt, _ time.Time) {
	d.ID, d.CreatedAt = id, createdAt
}

func (n *Notification) RecordID() string   { return n.ID }
func (n *Notification) Created() time.Time { return n.CreatedAt }
func (n *Notification) Stamp(id string, createdAt, _ time.Time) {
	n.ID, n.CreatedAt = id, createdAt
	if n.ReadBy == nil {
		n.ReadBy = []string{}
	}
}

func (v *Visit) RecordID() string   { return v.ID }
func (v *Visit) Created() time.Time { return v.CreatedAt }
func (v *Visit) Stamp(id string, createdAt, _ time.Time) {
	v.ID, v.CreatedAt = id, createdAt
}

var (
	_ Record = (*User)(nil)
	_ Record = (*Household)(nil)
	_ Record = (*Person)(nil)
	_ Record = (*GasCylinder)(nil)
	_ Record = (*CylinderAssignment)(nil)
	_ Record = (*Bag)(nil)
	_ Record = (*BagDistribution)(nil)
	_ Record = (*Notification)(nil)
	_ Record = (*Visit)(nil)
)
