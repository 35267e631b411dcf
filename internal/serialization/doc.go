// Package serialization saves and loads named float64 tensors in the
// .gbk checkpoint format.
//
//	Format Structure:
//	  [0x00: Magic "GRBK"]
//	  [0x04: Version (uint32 LE)]
//	  [0x08: Flags (uint32 LE)]
//	  [0x0C: Reserved (uint32)]
//	  [0x10: Header Size (uint64 LE)]
//	  [0x18: Data Size (uint64 LE)]
//	  [0x20: SHA-256 of the data section (32 bytes)]
//	  [0x40: Header: JSON metadata]
//	  [Tensor data: float64 LE, 64-byte aligned]
//
// Tensors are written in name order so the same state produces the same
// bytes apart from the creation time.
//
// Example usage:
//
//	var buf bytes.Buffer
//	err := serialization.Write(&buf, model.StateDict(), serialization.Header{ModelType: "Linear"})
//
//	ckpt, err := serialization.Read(&buf)
//	err = nn.LoadStateDict(model, ckpt.Tensors)
package serialization
