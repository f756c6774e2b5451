package party

import (
	"github.com/fxamacker/cbor/v2"

	"github.com/quorumkey/quorumkey/pkg/math/curve"
)

// PointMap is a map from party IDs to points, which knows how to
// marshal itself even though curve.Point is an interface.
type PointMap struct {
	group  curve.Curve
	Points map[ID]curve.Point
}

// NewPointMap creates a PointMap from a map of points.
func NewPointMap(points map[ID]curve.Point) *PointMap {
	var group curve.Curve
	for _, v := range points {
		group = v.Curve()
		break
	}
	return &PointMap{group: group, Points: points}
}

// EmptyPointMap creates an empty PointMap with a fixed group, ready for unmarshalling.
func EmptyPointMap(group curve.Curve) *PointMap {
	return &PointMap{group: group}
}

// IDs returns a sorted slice of the map's keys.
func (m *PointMap) IDs() IDSlice {
	ids := make([]ID, 0, len(m.Points))
	for id := range m.Points {
		ids = append(ids, id)
	}
	return NewIDSlice(ids)
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (m *PointMap) MarshalBinary() ([]byte, error) {
	pointBytes := make(map[ID]cbor.RawMessage, len(m.Points))
	var err error
	for k, v := range m.Points {
		pointBytes[k], err = cbor.Marshal(v)
		if err != nil {
			return nil, err
		}
	}
	return cbor.Marshal(pointBytes)
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
// The group must have been set beforehand with EmptyPointMap.
func (m *PointMap) UnmarshalBinary(data []byte) error {
	pointBytes := make(map[ID]cbor.RawMessage)
	if err := cbor.Unmarshal(data, &pointBytes); err != nil {
		return err
	}
	m.Points = make(map[ID]curve.Point, len(pointBytes))
	for k, v := range pointBytes {
		point := m.group.NewPoint()
		if err := cbor.Unmarshal(v, point); err != nil {
			return err
		}
		m.Points[k] = point
	}
	return nil
}
