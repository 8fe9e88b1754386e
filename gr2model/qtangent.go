// lslib.dev/go/lslib - a library for reading and writing Larian file formats
// Copyright (C) 2026  The lslib.dev Authors
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package gr2model

import "math"

// A QTangent packs a vertex's full tangent frame into one unit
// quaternion scaled to signed 16-bit components. The quaternion rotates
// the canonical frame (tangent +X, bitangent +Y, normal +Z) into the
// vertex frame; the sign of the W component carries the bitangent
// handedness instead of rotation information, so W < 0 marks a mirrored
// frame.

const qtangentScale = 32767

// DecodeQTangent unpacks a quantized quaternion into the vertex normal,
// tangent, and bitangent handedness sign (+1 or -1).
func DecodeQTangent(q [4]int16) (normal, tangent [3]float32, handedness float32) {
	x := float64(q[0]) / qtangentScale
	y := float64(q[1]) / qtangentScale
	z := float64(q[2]) / qtangentScale
	w := float64(q[3]) / qtangentScale
	n := math.Sqrt(x*x + y*y + z*z + w*w)
	if n > 0 {
		x, y, z, w = x/n, y/n, z/n, w/n
	}

	// First and third columns of the rotation matrix.
	tangent = [3]float32{
		float32(1 - 2*(y*y+z*z)),
		float32(2 * (x*y + w*z)),
		float32(2 * (x*z - w*y)),
	}
	normal = [3]float32{
		float32(2 * (x*z + w*y)),
		float32(2 * (y*z - w*x)),
		float32(1 - 2*(x*x+y*y)),
	}
	handedness = 1
	if w < 0 {
		handedness = -1
	}
	return normal, tangent, handedness
}

// EncodeQTangent packs a normal, tangent, and bitangent handedness into
// a quantized quaternion. When W would be positive but handedness is
// negative, the whole quaternion is negated to force W < 0 (and the
// mirror case holds W >= 0 for positive handedness); both signs of a
// quaternion encode the same rotation, so only the handedness bit moves.
func EncodeQTangent(normal, tangent [3]float32, handedness float32) [4]int16 {
	n := normalize3(normal)
	t := normalize3(tangent)
	b := cross3(n, t)

	// Rotation matrix columns: tangent, right-handed bitangent, normal.
	m := [3][3]float64{
		{t[0], b[0], n[0]},
		{t[1], b[1], n[1]},
		{t[2], b[2], n[2]},
	}
	x, y, z, w := matrixToQuat(m)
	if handedness < 0 {
		if w > 0 {
			x, y, z, w = -x, -y, -z, -w
		}
	} else if w < 0 {
		x, y, z, w = -x, -y, -z, -w
	}
	return [4]int16{quantize(x), quantize(y), quantize(z), quantize(w)}
}

func quantize(v float64) int16 {
	return int16(math.Round(v * qtangentScale))
}

func normalize3(v [3]float32) [3]float64 {
	x, y, z := float64(v[0]), float64(v[1]), float64(v[2])
	n := math.Sqrt(x*x + y*y + z*z)
	if n == 0 {
		return [3]float64{0, 0, 0}
	}
	return [3]float64{x / n, y / n, z / n}
}

func cross3(a, b [3]float64) [3]float64 {
	return [3]float64{
		a[1]*b[2] - a[2]*b[1],
		a[2]*b[0] - a[0]*b[2],
		a[0]*b[1] - a[1]*b[0],
	}
}

// matrixToQuat converts a proper rotation matrix to a unit quaternion
// via the standard largest-diagonal-pivot construction.
func matrixToQuat(m [3][3]float64) (x, y, z, w float64) {
	tr := m[0][0] + m[1][1] + m[2][2]
	switch {
	case tr > 0:
		s := math.Sqrt(tr+1) * 2
		w = s / 4
		x = (m[2][1] - m[1][2]) / s
		y = (m[0][2] - m[2][0]) / s
		z = (m[1][0] - m[0][1]) / s
	case m[0][0] > m[1][1] && m[0][0] > m[2][2]:
		s := math.Sqrt(1+m[0][0]-m[1][1]-m[2][2]) * 2
		w = (m[2][1] - m[1][2]) / s
		x = s / 4
		y = (m[0][1] + m[1][0]) / s
		z = (m[0][2] + m[2][0]) / s
	case m[1][1] > m[2][2]:
		s := math.Sqrt(1+m[1][1]-m[0][0]-m[2][2]) * 2
		w = (m[0][2] - m[2][0]) / s
		x = (m[0][1] + m[1][0]) / s
		y = s / 4
		z = (m[1][2] + m[2][1]) / s
	default:
		s := math.Sqrt(1+m[2][2]-m[0][0]-m[1][1]) * 2
		w = (m[1][0] - m[0][1]) / s
		x = (m[0][2] + m[2][0]) / s
		y = (m[1][2] + m[2][1]) / s
		z = s / 4
	}
	return x, y, z, w
}
