// Package detection extracts line segments from binary edge maps.
//
// The main entry point is DetectSegments, a progressive probabilistic Hough
// transform. Rather than voting with every edge pixel and then searching the
// accumulator, it visits edge pixels in a pseudo-random order, votes one pixel
// at a time, and as soon as any (rho, theta) cell crosses the vote threshold it
// walks the corresponding line through the edge map to find the actual
// segment. Pixels belonging to an accepted segment withdraw their votes, so
// each pixel contributes to at most one reported segment.
//
// # Algorithm Overview
//
//  1. Collect all non-zero pixels of the edge map.
//  2. Repeatedly pick a remaining pixel at random and vote for every angle.
//  3. If the best cell for that pixel reaches the threshold, walk the line in
//     both directions from the pixel, tolerating gaps up to MaxLineGap.
//  4. Keep the segment when either its horizontal or vertical extent is at
//     least MinLineLength; remove the walked pixels from the edge map.
//
// # Coordinate System
//
// All coordinates use the standard image convention:
//   - Origin (0, 0) at top-left corner of the edge map's bounds
//   - X increases rightward
//   - Y increases downward
//
// # Determinism
//
// The visiting order comes from a PCG generator seeded with HoughParams.Seed,
// so identical inputs and parameters always produce identical segments.
package detection
