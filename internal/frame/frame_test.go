package frame_test

import (
	"errors"
	"math"
	"math/rand"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/qdynsim/internal/dynamo"
	"github.com/san-kum/qdynsim/internal/frame"
	"github.com/san-kum/qdynsim/internal/linalg"
)

func randomHermitian(rng *rand.Rand, n int) *mat.CDense {
	m := mat.NewCDense(n, n, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			m.Set(i, j, complex(rng.Float64()*2-1, rng.Float64()*2-1))
		}
	}
	return linalg.Add(m, linalg.Adjoint(m))
}

func randomState(rng *rand.Rand, n int) dynamo.State {
	y := make(dynamo.State, n)
	for i := range y {
		y[i] = complex(rng.Float64()*2-1, rng.Float64()*2-1)
	}
	return y
}

func expectClose(got, want *mat.CDense) {
	ExpectWithOffset(1, linalg.AllClose(got, want, 1e-9, 1e-9)).To(BeTrue(), "got %v\nwant %v", got, want)
}

var _ = Describe("RotatingFrame", func() {
	var rng *rand.Rand

	BeforeEach(func() {
		rng = rand.New(rand.NewSource(2024))
	})

	Describe("construction", func() {
		It("treats a nil operator as the identity frame", func() {
			f, err := frame.New(nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(f).To(BeNil())
			Expect(f.Dim()).To(Equal(0))

			g := linalg.PauliX()
			expectClose(f.GeneratorIntoFrame(1.3, g, false, false), g)
			Expect(f.StateIntoFrame(2.0, dynamo.State{1, 2i}, false, false)).To(Equal(dynamo.State{1, 2i}))
		})

		It("rejects non-square operators", func() {
			_, err := frame.New(mat.NewCDense(2, 3, nil))
			Expect(errors.Is(err, dynamo.ErrNotSquare)).To(BeTrue())
		})

		It("rejects operators that are neither Hermitian nor anti-Hermitian", func() {
			_, err := frame.New(linalg.FromRows([][]complex128{{1, 2}, {0, 1}}))
			Expect(errors.Is(err, dynamo.ErrNotHermitian)).To(BeTrue())

			_, err = frame.NewDiagonal([]complex128{1, 1i})
			Expect(errors.Is(err, dynamo.ErrNotHermitian)).To(BeTrue())
		})

		It("converts a Hermitian operator H to F = -iH", func() {
			h := linalg.Add(linalg.PauliY(), linalg.PauliZ())
			f, err := frame.New(h)
			Expect(err).NotTo(HaveOccurred())
			expectClose(f.Operator(), linalg.Scale(-1i, h))

			vals := f.HermitianDiag()
			Expect(vals[0]).To(BeNumerically("~", -math.Sqrt2, 1e-12))
			Expect(vals[1]).To(BeNumerically("~", math.Sqrt2, 1e-12))
			for i, d := range f.Diag() {
				Expect(real(d)).To(BeZero())
				Expect(imag(d)).To(BeNumerically("~", -vals[i], 1e-12))
			}
		})

		It("accepts anti-Hermitian operators unchanged", func() {
			op := linalg.FromRows([][]complex128{{3i, 2i}, {2i, 0}})
			f, err := frame.New(op)
			Expect(err).NotTo(HaveOccurred())
			expectClose(f.Operator(), op)
		})

		It("keeps a unitary basis", func() {
			f, err := frame.New(randomHermitian(rng, 6))
			Expect(err).NotTo(HaveOccurred())
			b := f.Basis()
			expectClose(linalg.MulH(b, b), linalg.Identity(6))
		})

		It("uses a diagonal directly without diagonalizing", func() {
			f, err := frame.NewDiagonalReal([]float64{1, -1})
			Expect(err).NotTo(HaveOccurred())
			Expect(f.IsDiagonal()).To(BeTrue())
			Expect(f.Diag()).To(Equal([]complex128{-1i, 1i}))

			g, err := frame.NewDiagonal([]complex128{-1i, 1i})
			Expect(err).NotTo(HaveOccurred())
			Expect(g.Diag()).To(Equal(f.Diag()))
		})
	})

	DescribeTable("round trips",
		func(seed int64, dim int, t float64) {
			r := rand.New(rand.NewSource(seed))
			f, err := frame.New(randomHermitian(r, dim))
			Expect(err).NotTo(HaveOccurred())
			g := randomHermitian(r, dim)
			y := randomState(r, dim)

			for _, inFB := range []bool{false, true} {
				into := f.GeneratorIntoFrame(t, g, inFB, inFB)
				expectClose(f.GeneratorOutOfFrame(t, into, inFB, inFB), g)

				op := f.OperatorIntoFrame(t, g, inFB, inFB)
				expectClose(f.OperatorOutOfFrame(t, op, inFB, inFB), g)

				s := f.StateIntoFrame(t, y, inFB, inFB)
				Expect(linalg.VecClose(f.StateOutOfFrame(t, s, inFB, inFB), y, 1e-9, 1e-9)).To(BeTrue())
			}

			expectClose(f.GeneratorOutOfFrameBasis(f.GeneratorIntoFrameBasis(g)), g)
			Expect(linalg.VecClose(f.StateOutOfFrameBasis(f.StateIntoFrameBasis(y)), y, 1e-12, 1e-12)).To(BeTrue())
		},
		Entry("2x2 at t=0.5", int64(1), 2, 0.5),
		Entry("4x4 at t=-1.7", int64(2), 4, -1.7),
		Entry("7x7 at t=12.3", int64(3), 7, 12.3),
	)

	It("matches the dense exponential definition", func() {
		h := randomHermitian(rng, 4)
		g := randomHermitian(rng, 4)
		f, err := frame.New(h)
		Expect(err).NotTo(HaveOccurred())

		t := 0.83
		u := linalg.Expm(linalg.Scale(complex(0, t), h)) // e^{-tF} with F = -iH
		want := linalg.Sub(linalg.ConjugateBy(u, g), f.Operator())
		expectClose(f.GeneratorIntoFrame(t, g, false, false), want)

		y := randomState(rng, 4)
		Expect(linalg.VecClose(f.StateIntoFrame(t, y, false, false), linalg.MulVec(u, y), 1e-9, 1e-9)).To(BeTrue())
	})

	It("agrees between basis conventions", func() {
		h := randomHermitian(rng, 3)
		g := randomHermitian(rng, 3)
		f, err := frame.New(h)
		Expect(err).NotTo(HaveOccurred())

		t := 2.1
		lab := f.GeneratorIntoFrame(t, g, false, false)
		fb := f.GeneratorIntoFrame(t, f.GeneratorIntoFrameBasis(g), true, true)
		expectClose(f.GeneratorOutOfFrameBasis(fb), lab)
	})

	It("solves the frame equation for a static generator", func() {
		// With G = F the frame generator vanishes: e^{-tF}·F·e^{tF} - F = 0.
		h := randomHermitian(rng, 3)
		f, err := frame.New(h)
		Expect(err).NotTo(HaveOccurred())
		expectClose(f.GeneratorIntoFrame(4.2, f.Operator(), false, false), linalg.Zeros(3))
	})
})
