// Copyright 2025 The Gnosis Foundation Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package bintensors_test

import (
	"fmt"
	"log"

	"github.com/GnosisFoundation/bintensors"
	"github.com/GnosisFoundation/bintensors/dtype"
)

func Example() {
	weights, err := bintensors.NewTensorView(dtype.F32, []uint64{2, 2}, make([]byte, 16))
	if err != nil {
		log.Fatal(err)
	}
	bias, err := bintensors.NewTensorView(dtype.F32, []uint64{2}, make([]byte, 8))
	if err != nil {
		log.Fatal(err)
	}

	buf, err := bintensors.Serialize([]bintensors.NamedView[bintensors.TensorView]{
		{Name: "weights", View: weights},
		{Name: "bias", View: bias},
	}, map[string]string{"model": "demo"})
	if err != nil {
		log.Fatal(err)
	}

	bt, err := bintensors.Deserialize(buf)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println(bt.Keys())
	tv, err := bt.Tensor("weights")
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(tv.DType(), tv.Shape(), tv.DataLen())
	fmt.Println(bt.Metadata()["model"])

	// Output:
	// [weights bias]
	// F32 [2 2] 16
	// demo
}
