// Package loader reads and writes weight files in the SafeTensors format.
//
// A file is an 8-byte little-endian header length, a JSON header mapping
// tensor names to dtype, shape and byte range, then the packed tensor bytes:
//
//	r, err := loader.OpenSafeTensors("glove.safetensors")
//	if err != nil {
//	    return err
//	}
//	defer r.Close()
//	table, err := r.LoadTensor("word_emb", tensor.CPU)
//
// Word-vector tables and encoder state dicts both travel in this format.
package loader
